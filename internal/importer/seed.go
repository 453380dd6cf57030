package importer

import "minds/internal/types"

// Seed returns the built-in starter council: enough thinkers to exercise
// every template boost set. Real deployments import a larger corpus from
// JSON; the seed keeps a fresh install useful and the test fixtures honest.
func Seed() []ThinkerDoc {
	return []ThinkerDoc{
		doc("martin-fowler", "Martin Fowler", "software",
			"Author of Refactoring; chronicler of enterprise architecture patterns.",
			p("strangler-fig", "Strangler Fig",
				"Replace a legacy system incrementally by routing new behaviour around the old one until nothing routes to it.",
				tags("architecture", "migration"),
				"Fails when the legacy system exposes no seams to route around.",
				types.StanceFor),
			p("monolith-first", "Monolith First",
				"Start new systems as a single deployable; extract services only after the domain boundaries have proven themselves.",
				tags("architecture", "simplicity"),
				"Fails when the domain is already well charted and teams are already aligned to services.",
				types.StanceFor),
		),
		doc("kent-beck", "Kent Beck", "software",
			"Creator of Extreme Programming and test-driven development.",
			p("tdd-red-green", "Red-Green-Refactor",
				"Write a failing test, make it pass with the simplest change, then clean up. The loop keeps design honest.",
				tags("testing", "process"),
				"Fails when the interface under test is still churning daily.",
				types.StanceFor),
			p("small-steps", "Small Steps",
				"Make each change small enough that the system is shippable after every step.",
				tags("process", "migration"),
				"Fails when steps are so small they carry no observable progress.",
				types.StanceFor),
		),
		doc("fred-brooks", "Fred Brooks", "systems",
			"Author of The Mythical Man-Month.",
			p("second-system-effect", "Second-System Effect",
				"The second system a designer builds is the most dangerous: every ambition deferred from the first lands in the rewrite.",
				tags("architecture", "rewrite"),
				"Fails when scope is held fixed by contract and the first system's authors are absent.",
				types.StanceAgainst),
			p("brooks-law", "Brooks's Law",
				"Adding people to a late project makes it later: onboarding and communication overhead outrun the new hands.",
				tags("team", "process"),
				"Fails when the work is genuinely partitionable and onboarding cost is near zero.",
				types.StanceAgainst),
			p("no-silver-bullet", "No Silver Bullet",
				"No single technology or practice yields an order-of-magnitude improvement; essential complexity stays.",
				tags("architecture", "decision"),
				"Fails if the pain is accidental complexity a tool genuinely removes.",
				types.StanceAgainst),
		),
		doc("donald-knuth", "Donald Knuth", "software",
			"Author of The Art of Computer Programming.",
			p("premature-optimization", "Premature Optimization",
				"Premature optimization is the root of all evil: forget small efficiencies about 97% of the time and profile first.",
				tags("performance", "simplicity"),
				"Fails when a measured bottleneck already exists on the critical path.",
				types.StanceAgainst),
			p("algorithm-analysis", "Analyze Before Tuning",
				"An algorithmic improvement beats constant-factor tuning; know the complexity class before touching the code.",
				tags("performance"),
				"Fails when the working set is small enough that constants dominate.",
				types.StanceNeutral),
		),
		doc("sam-newman", "Sam Newman", "software",
			"Author of Building Microservices.",
			p("independent-deployability", "Independent Deployability",
				"The goal of service boundaries is independent deployability, not the maximum number of services.",
				tags("architecture"),
				"Fails when services must still release together.",
				types.StanceNeutral),
			p("database-per-service", "Database Per Service",
				"Sharing a database couples services at the schema; each service owns its data or the split is cosmetic.",
				tags("architecture", "data"),
				"Fails when cross-service transactions are the dominant workload.",
				types.StanceNeutral),
		),
		doc("eric-evans", "Eric Evans", "software",
			"Author of Domain-Driven Design.",
			p("bounded-context", "Bounded Context",
				"Models only stay coherent inside an explicit boundary; map the contexts before drawing service lines.",
				tags("architecture", "modeling"),
				"Fails when the whole domain genuinely fits one model.",
				types.StanceNeutral),
			p("ubiquitous-language", "Ubiquitous Language",
				"Code, conversation, and model share one vocabulary per context, or translation errors become design errors.",
				tags("modeling", "team"),
				"Fails when the domain experts themselves disagree on terms.",
				types.StanceNeutral),
		),
		doc("michael-feathers", "Michael Feathers", "software",
			"Author of Working Effectively with Legacy Code.",
			p("characterization-tests", "Characterization Tests",
				"Before changing legacy code, write tests that pin its current behaviour, bugs included.",
				tags("testing", "migration"),
				"Fails when the behaviour to pin is nondeterministic or unobservable.",
				types.StanceNeutral),
			p("seams", "Find the Seams",
				"A seam is where behaviour can change without editing the code; legacy work is seam hunting.",
				tags("migration", "testing"),
				"Fails in codebases with no injection points at all, where a seam must be built first.",
				types.StanceNeutral),
		),
		doc("ward-cunningham", "Ward Cunningham", "software",
			"Inventor of the wiki and the debt metaphor.",
			p("technical-debt-metaphor", "Technical Debt",
				"Shipping on a partial design is borrowing; the interest is every change that fights the old model. Repay deliberately.",
				tags("process", "decision"),
				"Fails when the code never changes again, making the interest rate zero.",
				types.StanceNeutral),
			p("simplest-thing", "Simplest Thing That Could Possibly Work",
				"Do the simplest thing that could possibly work, then let feedback justify anything more.",
				tags("simplicity", "process"),
				"Fails when the simple version forecloses a requirement already committed.",
				types.StanceFor),
		),
		doc("ron-jeffries", "Ron Jeffries", "software",
			"Extreme Programming co-founder.",
			p("yagni", "YAGNI",
				"You aren't gonna need it: build for today's proven need, not for the speculative future one.",
				tags("simplicity", "product"),
				"Fails when the future need is already contracted and retrofitting is provably costlier.",
				types.StanceAgainst),
			p("emergent-design", "Emergent Design",
				"Let the design grow from working code under refactoring pressure instead of speculating it up front.",
				tags("process", "simplicity"),
				"Fails for interfaces that are expensive to change after publication.",
				types.StanceNeutral),
		),
		doc("kelly-johnson", "Kelly Johnson", "systems",
			"Lockheed Skunk Works lead engineer.",
			p("kiss", "KISS",
				"Keep it simple: the design must be maintainable by an average mechanic under field conditions, not by its author.",
				tags("simplicity"),
				"Fails when the domain's essential complexity cannot be hidden.",
				types.StanceFor),
			p("skunk-works-autonomy", "Small Empowered Teams",
				"A small team with full authority outships a large one that escalates every decision.",
				tags("team"),
				"Fails when the problem needs more specialities than a small team can hold.",
				types.StanceNeutral),
		),
		doc("john-gall", "John Gall", "systems",
			"Systemantics author.",
			p("galls-law", "Gall's Law",
				"A complex system that works evolved from a simple system that worked; a complex design built from scratch does not work.",
				tags("architecture", "simplicity"),
				"Fails for domains where the minimal viable system is itself irreducibly complex.",
				types.StanceAgainst),
			p("working-simple-systems", "Grow From Working Systems",
				"Extend what demonstrably works instead of replacing it with what should work.",
				tags("migration", "simplicity"),
				"Fails when the working system's substrate is being discontinued.",
				types.StanceNeutral),
		),
		doc("mel-conway", "Mel Conway", "systems",
			"Author of the committee-design paper behind Conway's law.",
			p("conways-law", "Conway's Law",
				"Organizations ship their communication structure; the architecture copies the org chart whether you plan it or not.",
				tags("team", "architecture"),
				"Fails for systems built by a single person.",
				types.StanceNeutral),
			p("reverse-conway", "Reverse Conway Maneuver",
				"Restructure the teams into the architecture you want, and the system will follow.",
				tags("team", "architecture"),
				"Fails when the org cannot actually hold the new structure.",
				types.StanceFor),
		),
		doc("rich-hickey", "Rich Hickey", "software",
			"Clojure creator.",
			p("simple-made-easy", "Simple Made Easy",
				"Simple is objective (one braid, one role); easy is relative to the author. Choose simple even when it is not easy.",
				tags("simplicity", "modeling"),
				"Fails when delivery speed today genuinely outweighs change speed forever.",
				types.StanceFor),
			p("decomplect", "Decomplect",
				"Interleaved concerns multiply states; separate them even at the cost of more pieces.",
				tags("simplicity", "architecture"),
				"Fails when the separation itself becomes the dominant complexity.",
				types.StanceNeutral),
		),
		doc("nassim-taleb", "Nassim Taleb", "philosophy",
			"Author of Antifragile.",
			p("via-negativa", "Via Negativa",
				"Improvement by removal: what you stop doing is more reliable than what you add, because harms are better understood than benefits.",
				tags("decision", "simplicity"),
				"Fails when the system is missing a genuinely required part.",
				types.StanceAgainst),
			p("skin-in-the-game", "Skin in the Game",
				"Trust advice only from those exposed to its downside; asymmetric advisers transfer risk to you.",
				tags("decision"),
				"Fails when the adviser's exposure cannot be established either way.",
				types.StanceNeutral),
		),
		doc("karl-popper", "Karl Popper", "philosophy",
			"Philosopher of science.",
			p("falsifiability", "Falsifiability",
				"A position that no outcome could refute is not knowledge; state what would prove you wrong before deciding.",
				tags("decision", "testing"),
				"Fails for genuinely unobservable outcomes.",
				types.StanceNeutral),
			p("bold-conjectures", "Bold Conjectures",
				"Prefer the bold testable claim over the safe vague one; refutation of a sharp claim teaches most.",
				tags("decision"),
				"Fails when the cost of being refuted is unbounded.",
				types.StanceNeutral),
		),
		doc("bruce-schneier", "Bruce Schneier", "security",
			"Security technologist.",
			p("defense-in-depth", "Defense in Depth",
				"Layer controls so one failure does not equal a breach; no single mechanism deserves full trust.",
				tags("security", "architecture"),
				"Fails when layers share a common failure mode and only pretend independence.",
				types.StanceFor),
			p("security-theater", "Security Theater",
				"Controls that feel protective without reducing risk consume budget and breed false confidence; cut them.",
				tags("security", "decision"),
				"Fails when the visible control deters a real attacker class.",
				types.StanceAgainst),
		),
		doc("annie-duke", "Annie Duke", "decision-making",
			"Former professional poker player, decision scientist.",
			p("resulting", "Avoid Resulting",
				"Judging a decision by its outcome conflates luck with quality; grade the process you could have known at the time.",
				tags("decision"),
				"Fails when outcomes are the only observable signal for a repeated identical decision.",
				types.StanceNeutral),
			p("expected-value", "Expected Value Thinking",
				"Weigh each branch by probability times payoff; the best decision can still lose a coin flip.",
				tags("decision", "business"),
				"Fails when probabilities are unknowable and stakes are ruinous.",
				types.StanceNeutral),
		),
		doc("daniel-kahneman", "Daniel Kahneman", "decision-making",
			"Author of Thinking, Fast and Slow.",
			p("base-rates", "Respect Base Rates",
				"The inside view of your special case misleads; start from how similar cases actually turned out.",
				tags("decision"),
				"Fails when the reference class is genuinely unlike the case at hand.",
				types.StanceAgainst),
			p("sunk-cost", "Ignore Sunk Costs",
				"Money and effort already spent are gone; only the forward-looking costs and benefits count.",
				tags("decision", "business"),
				"Fails when abandoning also destroys transferable knowledge the accounting missed.",
				types.StanceAgainst),
		),
		doc("clayton-christensen", "Clayton Christensen", "business",
			"Author of The Innovator's Dilemma.",
			p("jobs-to-be-done", "Jobs to Be Done",
				"Customers hire products to do a job; scope the build to the job, not to the feature list of the incumbent.",
				tags("product", "business"),
				"Fails when the job is undiscoverable until the product exists.",
				types.StanceNeutral),
			p("disruption-theory", "Disruption Theory",
				"Incumbents overserve; the cheap, worse product that serves the underserved job eventually wins the market.",
				tags("business"),
				"Fails in markets where integration, not modularity, is still the performance frontier.",
				types.StanceNeutral),
		),
		doc("eliyahu-goldratt", "Eliyahu Goldratt", "business",
			"Author of The Goal, theory of constraints.",
			p("theory-of-constraints", "Theory of Constraints",
				"Throughput is set by the single bottleneck; improving anything else is an illusion of progress.",
				tags("process", "performance"),
				"Fails when the constraint moves faster than you can measure it.",
				types.StanceNeutral),
			p("local-optima", "Distrust Local Optima",
				"Optimizing a part degrades the whole unless the part is the constraint.",
				tags("process", "performance"),
				"Fails when subsystems are genuinely independent.",
				types.StanceAgainst),
		),
		doc("john-ousterhout", "John Ousterhout", "software",
			"Author of A Philosophy of Software Design.",
			p("deep-modules", "Deep Modules",
				"The best modules hide a lot of functionality behind a small interface; shallow modules tax every caller.",
				tags("architecture", "simplicity"),
				"Fails when the abstraction leaks and callers must know the internals anyway.",
				types.StanceNeutral),
			p("strategic-programming", "Strategic Programming",
				"Invest a steady fraction of every change in design, or tactical shortcuts compound into a tarpit.",
				tags("process"),
				"Fails for true throwaway code with a verified end date.",
				types.StanceNeutral),
		),
		doc("phil-karlton", "Phil Karlton", "software",
			"Netscape engineer, namer of the two hard things.",
			p("cache-invalidation", "Cache Invalidation Is Hard",
				"There are only two hard things: cache invalidation and naming things. A cache is a second source of truth you must now keep honest.",
				tags("caching", "performance", "data"),
				"Fails when the cached data is immutable or staleness is explicitly tolerated.",
				types.StanceAgainst),
			p("naming-things", "Naming Things",
				"A name is the smallest design document; when the right name is hard to find, the design under it is usually wrong.",
				tags("simplicity", "modeling"),
				"Fails for throwaway locals where any label serves.",
				types.StanceNeutral),
		),
		doc("michael-stonebraker", "Michael Stonebraker", "software",
			"Database systems researcher, Postgres originator.",
			p("one-size-fits-none", "One Size Fits None",
				"No single storage engine wins every workload; match the engine to the access pattern, not to fashion.",
				tags("data", "architecture"),
				"Fails at small scale where any engine is fast enough.",
				types.StanceNeutral),
			p("acid-matters", "ACID Matters",
				"Transactions are the cheapest correctness tool ever shipped; giving them up needs a measured reason, not a trend.",
				tags("data"),
				"Fails when the workload is append-only and conflict-free.",
				types.StanceFor),
		),
		doc("brendan-gregg", "Brendan Gregg", "systems",
			"Performance engineer, flame graph inventor.",
			p("profile-first", "Profile Before Optimizing",
				"Measure where the time actually goes before changing anything; intuition about bottlenecks is usually wrong.",
				tags("performance"),
				"Fails when the system cannot be profiled safely in any environment.",
				types.StanceFor),
			p("use-method", "USE Method",
				"For every resource check utilization, saturation, and errors; the checklist finds what intuition skips.",
				tags("performance", "process"),
				"Fails for purely algorithmic slowness with no resource signal.",
				types.StanceNeutral),
		),
		doc("donella-meadows", "Donella Meadows", "systems",
			"Systems thinker, Thinking in Systems.",
			p("leverage-points", "Leverage Points",
				"Interventions differ by orders of magnitude; parameters are weak levers, goals and paradigms are strong ones.",
				tags("decision", "process"),
				"Fails when only parameter-level access exists.",
				types.StanceNeutral),
			p("system-purpose", "The Purpose of a System Is What It Does",
				"Judge a system by its actual behaviour, not its stated intent; recurring 'accidents' are outputs.",
				tags("decision"),
				"Fails during genuine transients after a structural change.",
				types.StanceNeutral),
		),
	}
}

func doc(id, name, domain, background string, principles ...types.Principle) ThinkerDoc {
	for i := range principles {
		principles[i].ThinkerID = id
	}
	return ThinkerDoc{
		Thinker:    types.Thinker{ID: id, Name: name, Domain: domain, Background: background},
		Principles: principles,
	}
}

func p(id, name, description string, domainTags []string, falsification string, stance types.Stance) types.Principle {
	return types.Principle{
		ID:            id,
		Name:          name,
		Description:   description,
		DomainTags:    domainTags,
		Falsification: falsification,
		DefaultStance: stance,
	}
}

func tags(t ...string) []string { return t }
