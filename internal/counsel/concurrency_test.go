package counsel

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"minds/internal/provenance"
	"minds/internal/types"
)

// Concurrent counsel calls must neither collide on decision ids nor break
// the chain: the persist-sign sequence is atomic per decision.
func TestConcurrentCounselChainsStayValid(t *testing.T) {
	e, st := newTestEngine(t, true)

	questions := []string{
		"Should we rewrite the legacy system?",
		"Should we add caching?",
		"Should we hire more engineers to meet the deadline?",
		"Should we pay down technical debt before the next feature?",
	}

	const workers = 8
	const perWorker = 4

	var mu sync.Mutex
	ids := make(map[string]bool)

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				resp, err := e.Counsel(context.Background(), types.CounselRequest{
					Question: questions[(w+i)%len(questions)],
				})
				if err != nil {
					errs <- err
					return
				}
				mu.Lock()
				if ids[resp.DecisionID] {
					mu.Unlock()
					t.Errorf("decision id collision: %s", resp.DecisionID)
					return
				}
				ids[resp.DecisionID] = true
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent counsel: %v", err)
	}

	require.Len(t, ids, workers*perWorker)

	reports, err := provenance.VerifyAll(context.Background(), st)
	require.NoError(t, err)
	require.Len(t, reports, workers*perWorker)
	for _, r := range reports {
		require.True(t, r.ChainValid, "decision %s: %s", r.DecisionID, r.Reason)
	}
}
