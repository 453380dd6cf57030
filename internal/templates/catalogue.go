package templates

import "minds/internal/types"

// Catalogue returns the built-in decision archetypes in declaration order.
// Declaration order is the tie-break for matching, so the more specific
// shapes come first.
func Catalogue() []Template {
	return []Template{
		monolithVsMicroservices(),
		rewriteVsRefactor(),
		buildVsBuy(),
		scaleTeam(),
		addCaching(),
		sqlVsNosql(),
		tddAdoption(),
		technicalDebt(),
		prematureOptimization(),
		conwaysLaw(),
		yagni(),
		simpleThing(),
	}
}

func monolithVsMicroservices() Template {
	return Template{
		ID:          "monolith-vs-microservices",
		Name:        "Monolith vs Microservices",
		Description: "Should we build a monolith or decompose into services?",
		Domain:      "architecture",
		Keywords: map[string]float64{
			"microservice": 1, "monolith": 1, "decompose": 1, "service boundaries": 1,
		},
		Phrases: map[string]float64{
			"break into services": 3, "split the monolith": 3,
		},
		Boost: []Boost{
			{PrincipleID: "monolith-first", Stance: types.StanceAgainst},
			{PrincipleID: "independent-deployability", Stance: types.StanceFor},
			{PrincipleID: "bounded-context"},
			{PrincipleID: "galls-law", Stance: types.StanceAgainst},
			{PrincipleID: "conways-law"},
		},
		Synergies: []Synergy{
			{Principles: []string{"monolith-first", "bounded-context"},
				Why: "understand the domain inside a monolith before extracting services"},
			{Principles: []string{"independent-deployability", "conways-law"},
				Why: "service boundaries only hold when team boundaries match them"},
		},
		Tensions: []Tension{
			{PrincipleA: "database-per-service", PrincipleB: "acid-matters",
				WhenA: "independent deployability outweighs strong consistency",
				WhenB: "data integrity is critical (payments, inventory)"},
		},
		BlindSpots: []BlindSpot{
			{Name: "Operational complexity", Severity: "critical",
				CheckQuestion: "Do you have orchestration, tracing, and centralized logging in place?"},
			{Name: "Network failures", Severity: "critical",
				CheckQuestion: "Do you have circuit breakers, timeouts, and retry policies?"},
			{Name: "Data consistency", Severity: "high",
				CheckQuestion: "How will you handle eventual consistency across services?"},
		},
	}
}

func rewriteVsRefactor() Template {
	return Template{
		ID:          "rewrite-vs-refactor",
		Name:        "Rewrite vs Refactor",
		Description: "Should we rewrite from scratch or incrementally improve?",
		Domain:      "architecture",
		Keywords: map[string]float64{
			"rewrite": 1, "refactor": 1, "legacy": 1, "rebuild": 1, "greenfield": 1,
		},
		Phrases: map[string]float64{
			"from scratch": 3, "rewrite the legacy": 3,
		},
		Boost: []Boost{
			{PrincipleID: "strangler-fig", Stance: types.StanceFor},
			{PrincipleID: "small-steps", Stance: types.StanceFor},
			{PrincipleID: "second-system-effect", Stance: types.StanceAgainst},
			{PrincipleID: "no-silver-bullet", Stance: types.StanceAgainst},
			{PrincipleID: "premature-optimization", Stance: types.StanceAgainst},
			{PrincipleID: "characterization-tests"},
			{PrincipleID: "technical-debt-metaphor"},
		},
		Synergies: []Synergy{
			{Principles: []string{"strangler-fig", "characterization-tests"},
				Why: "pin current behaviour before routing around it"},
		},
		BlindSpots: []BlindSpot{
			{Name: "Hidden business rules", Severity: "critical",
				CheckQuestion: "How many undocumented behaviours does the old system encode?"},
			{Name: "Rewrite duration", Severity: "high",
				CheckQuestion: "What ships for users while the rewrite is in flight?"},
			{Name: "Second-system ambition", Severity: "high",
				CheckQuestion: "Is the new design carrying every feature anyone ever wished for?"},
		},
	}
}

func buildVsBuy() Template {
	return Template{
		ID:          "build-vs-buy",
		Name:        "Build vs Buy",
		Description: "Should we build this ourselves or adopt an existing product?",
		Domain:      "business",
		Keywords: map[string]float64{
			"vendor": 1, "buy": 1, "off-the-shelf": 1, "saas": 1, "in-house": 1,
		},
		Phrases: map[string]float64{
			"build or buy": 3, "build our own": 3,
		},
		Boost: []Boost{
			{PrincipleID: "yagni", Stance: types.StanceAgainst},
			{PrincipleID: "jobs-to-be-done"},
			{PrincipleID: "expected-value"},
			{PrincipleID: "theory-of-constraints"},
		},
		BlindSpots: []BlindSpot{
			{Name: "Total cost of ownership", Severity: "critical",
				CheckQuestion: "Have you priced maintenance, not just the build?"},
			{Name: "Vendor lock-in", Severity: "high",
				CheckQuestion: "What does migrating away cost in two years?"},
			{Name: "Not invented here", Severity: "medium",
				CheckQuestion: "Is the build justified by need or by pride?"},
		},
	}
}

func scaleTeam() Template {
	return Template{
		ID:          "scale-team",
		Name:        "Scaling the Team",
		Description: "Should we add people to go faster?",
		Domain:      "team",
		Keywords: map[string]float64{
			"hire": 1, "hiring": 1, "headcount": 1, "onboard": 1, "engineers": 1,
		},
		Phrases: map[string]float64{
			"add more people": 3, "grow the team": 3, "hire more": 3,
		},
		Boost: []Boost{
			{PrincipleID: "brooks-law", Stance: types.StanceAgainst},
			{PrincipleID: "conways-law"},
			{PrincipleID: "theory-of-constraints"},
		},
		BlindSpots: []BlindSpot{
			{Name: "Onboarding cost", Severity: "high",
				CheckQuestion: "Who stops shipping to teach the new people?"},
			{Name: "Communication overhead", Severity: "high",
				CheckQuestion: "How many new pairwise channels does this add?"},
			{Name: "Actual bottleneck", Severity: "medium",
				CheckQuestion: "Is throughput limited by hands or by decisions?"},
		},
	}
}

func addCaching() Template {
	return Template{
		ID:          "add-caching",
		Name:        "Add Caching",
		Description: "Should we add a cache layer to fix performance?",
		Domain:      "performance",
		Keywords: map[string]float64{
			"cache": 1, "caching": 1, "redis": 1, "memcached": 1, "cdn": 1,
		},
		Phrases: map[string]float64{
			"add caching": 3, "add a cache": 3,
		},
		Boost: []Boost{
			{PrincipleID: "premature-optimization", Stance: types.StanceAgainst},
			{PrincipleID: "cache-invalidation", Stance: types.StanceAgainst},
			{PrincipleID: "profile-first", Stance: types.StanceFor},
			{PrincipleID: "use-method"},
		},
		AntiPatternPrinciples: []string{"second-system-effect"},
		Synergies: []Synergy{
			{Principles: []string{"profile-first", "use-method"},
				Why: "measure the real bottleneck before hiding it behind a cache"},
		},
		BlindSpots: []BlindSpot{
			{Name: "Invalidation strategy", Severity: "critical",
				CheckQuestion: "When the source changes, who evicts what?"},
			{Name: "Measured bottleneck", Severity: "critical",
				CheckQuestion: "Is the slow path profiled or presumed?"},
			{Name: "Stale reads", Severity: "high",
				CheckQuestion: "Which flows tolerate stale data, and for how long?"},
		},
	}
}

func sqlVsNosql() Template {
	return Template{
		ID:          "sql-vs-nosql",
		Name:        "SQL vs NoSQL",
		Description: "Which storage model fits this system?",
		Domain:      "data",
		Keywords: map[string]float64{
			"nosql": 1, "postgres": 1, "mongo": 1, "dynamo": 1, "relational": 1, "database": 1,
		},
		Phrases: map[string]float64{
			"sql or nosql": 3, "which database": 3,
		},
		Boost: []Boost{
			{PrincipleID: "one-size-fits-none"},
			{PrincipleID: "acid-matters", Stance: types.StanceFor},
			{PrincipleID: "base-rates"},
			{PrincipleID: "kiss"},
		},
		BlindSpots: []BlindSpot{
			{Name: "Query patterns", Severity: "critical",
				CheckQuestion: "Have you listed the top five queries before choosing the store?"},
			{Name: "Consistency needs", Severity: "high",
				CheckQuestion: "Which writes must be transactional?"},
			{Name: "Operational maturity", Severity: "medium",
				CheckQuestion: "Who on the team has run this store in production?"},
		},
	}
}

func tddAdoption() Template {
	return Template{
		ID:          "tdd-adoption",
		Name:        "TDD Adoption",
		Description: "Should we write tests before code?",
		Domain:      "testing",
		Keywords: map[string]float64{
			"tdd": 1, "test-first": 1, "coverage": 1, "unit test": 1, "red-green": 1,
		},
		Phrases: map[string]float64{
			"tests before": 3, "test driven": 3,
		},
		Boost: []Boost{
			{PrincipleID: "tdd-red-green", Stance: types.StanceFor},
			{PrincipleID: "small-steps", Stance: types.StanceFor},
			{PrincipleID: "characterization-tests"},
			{PrincipleID: "falsifiability", Stance: types.StanceFor},
		},
		Synergies: []Synergy{
			{Principles: []string{"tdd-red-green", "small-steps"},
				Why: "the red-green loop only works at small-step granularity"},
		},
		Tensions: []Tension{
			{PrincipleA: "tdd-red-green", PrincipleB: "yagni",
				WhenA: "behaviour is known and worth pinning",
				WhenB: "the design is still a sketch that tests would freeze"},
		},
		BlindSpots: []BlindSpot{
			{Name: "Testing the wrong level", Severity: "high",
				CheckQuestion: "Are you unit-testing what only an integration test can catch?"},
			{Name: "Coverage theater", Severity: "medium",
				CheckQuestion: "Does the number measure risk or ritual?"},
			{Name: "Implementation coupling", Severity: "high",
				CheckQuestion: "Will these tests survive a refactor?"},
		},
	}
}

func technicalDebt() Template {
	return Template{
		ID:          "technical-debt",
		Name:        "Technical Debt",
		Description: "Should we pay down debt now or keep shipping?",
		Domain:      "process",
		Keywords: map[string]float64{
			"debt": 1, "cleanup": 1, "messy": 1, "shortcuts": 1,
		},
		Phrases: map[string]float64{
			"technical debt": 3, "pay down": 3,
		},
		Boost: []Boost{
			{PrincipleID: "technical-debt-metaphor"},
			{PrincipleID: "strangler-fig", Stance: types.StanceFor},
			{PrincipleID: "sunk-cost", Stance: types.StanceAgainst},
			{PrincipleID: "small-steps"},
		},
		BlindSpots: []BlindSpot{
			{Name: "Interest rate", Severity: "high",
				CheckQuestion: "Which debt actually slows you down weekly, and which is cosmetic?"},
			{Name: "Big-bang cleanup", Severity: "high",
				CheckQuestion: "Can the paydown ship in slices that each leave the system working?"},
			{Name: "Recurrence", Severity: "medium",
				CheckQuestion: "What stops the same debt from accruing again?"},
		},
	}
}

func prematureOptimization() Template {
	return Template{
		ID:          "premature-optimization",
		Name:        "Premature Optimization",
		Description: "Should we optimize this before measuring?",
		Domain:      "performance",
		Keywords: map[string]float64{
			"optimize": 1, "optimization": 1, "slow": 1, "latency": 1, "throughput": 1,
		},
		Phrases: map[string]float64{
			"make it faster": 3, "performance problem": 3,
		},
		Boost: []Boost{
			{PrincipleID: "premature-optimization", Stance: types.StanceAgainst},
			{PrincipleID: "profile-first", Stance: types.StanceFor},
			{PrincipleID: "use-method", Stance: types.StanceFor},
			{PrincipleID: "theory-of-constraints"},
		},
		Synergies: []Synergy{
			{Principles: []string{"profile-first", "theory-of-constraints"},
				Why: "profiling finds the constraint; everything else is noise"},
		},
		BlindSpots: []BlindSpot{
			{Name: "Wrong bottleneck", Severity: "critical",
				CheckQuestion: "Does a profile show this code on the hot path?"},
			{Name: "Optimization level", Severity: "high",
				CheckQuestion: "Is the win in the algorithm, the query, or the code you are staring at?"},
			{Name: "Readability cost", Severity: "medium",
				CheckQuestion: "What does the fast version cost the next reader?"},
		},
	}
}

func conwaysLaw() Template {
	return Template{
		ID:          "conways-law",
		Name:        "Conway's Law",
		Description: "Does the org structure fit the architecture we want?",
		Domain:      "team",
		Keywords: map[string]float64{
			"conway": 1, "org chart": 1, "team structure": 1, "ownership": 1, "reorg": 1,
		},
		Phrases: map[string]float64{
			"mirrors the org": 3, "team per service": 3,
		},
		Boost: []Boost{
			{PrincipleID: "conways-law"},
			{PrincipleID: "reverse-conway", Stance: types.StanceFor},
			{PrincipleID: "brooks-law"},
			{PrincipleID: "leverage-points"},
		},
		BlindSpots: []BlindSpot{
			{Name: "Communication paths", Severity: "high",
				CheckQuestion: "Which interfaces exist only because two teams do not talk?"},
			{Name: "Reorg churn", Severity: "medium",
				CheckQuestion: "Will the architecture outlive the next reorg?"},
			{Name: "Shared ownership gaps", Severity: "high",
				CheckQuestion: "Which components does nobody own after the split?"},
		},
	}
}

func yagni() Template {
	return Template{
		ID:          "yagni",
		Name:        "YAGNI",
		Description: "Are we building for a need that does not exist yet?",
		Domain:      "product",
		Keywords: map[string]float64{
			"yagni": 1, "speculative": 1, "future-proof": 1, "extensible": 1, "generic": 1,
		},
		Phrases: map[string]float64{
			"might need": 3, "in case we": 3, "someday": 3,
		},
		Boost: []Boost{
			{PrincipleID: "yagni", Stance: types.StanceAgainst},
			{PrincipleID: "via-negativa", Stance: types.StanceAgainst},
			{PrincipleID: "simplest-thing"},
			{PrincipleID: "kiss"},
		},
		BlindSpots: []BlindSpot{
			{Name: "Evidence of need", Severity: "critical",
				CheckQuestion: "Who asked for this, with what urgency?"},
			{Name: "Cost of waiting", Severity: "medium",
				CheckQuestion: "What does it cost to build this later instead?"},
			{Name: "Carrying cost", Severity: "high",
				CheckQuestion: "Who maintains the flexibility nobody uses?"},
		},
	}
}

func simpleThing() Template {
	return Template{
		ID:          "simple-thing",
		Name:        "Simplest Thing",
		Description: "What is the simplest thing that could possibly work?",
		Domain:      "simplicity",
		Keywords: map[string]float64{
			"simple": 1, "simplest": 1, "complexity": 1, "complicated": 1, "overengineered": 1,
		},
		Phrases: map[string]float64{
			"simplest thing": 3, "too complex": 3,
		},
		Boost: []Boost{
			{PrincipleID: "simplest-thing", Stance: types.StanceFor},
			{PrincipleID: "kiss", Stance: types.StanceFor},
			{PrincipleID: "simple-made-easy"},
			{PrincipleID: "galls-law", Stance: types.StanceFor},
			{PrincipleID: "deep-modules"},
		},
		Synergies: []Synergy{
			{Principles: []string{"simplest-thing", "galls-law"},
				Why: "working complex systems only evolve from working simple ones"},
		},
		BlindSpots: []BlindSpot{
			{Name: "Simple vs easy", Severity: "high",
				CheckQuestion: "Is this genuinely simple, or just familiar?"},
			{Name: "Essential complexity", Severity: "medium",
				CheckQuestion: "Which complexity is the domain's, not the design's?"},
			{Name: "Future seams", Severity: "low",
				CheckQuestion: "Does the simple version leave a seam to grow through?"},
		},
	}
}
