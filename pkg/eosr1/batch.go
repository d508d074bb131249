package eosr1

import (
	"context"
	"runtime"
	"sync"
)

// BatchResult is the outcome of signing one message of a batch.
type BatchResult struct {
	Index     int
	Signature string
	Err       error
}

type batchItem struct {
	index   int
	message string
}

// SignBatch signs messages with a pool of workers. Results are returned in
// input order; a message that could not be signed carries its error.
//
// Args:
//   - ctx: Context for cancellation; unsigned messages get ctx.Err()
//   - messages: payloads to sign
//   - numWorkers: number of parallel workers (0 = auto-detect based on CPU cores)
//
// Returns:
//   - one BatchResult per message
func (c *Client) SignBatch(ctx context.Context, messages []string, numWorkers int) []BatchResult {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(messages) {
		numWorkers = len(messages)
	}

	results := make([]BatchResult, len(messages))
	for i := range results {
		results[i] = BatchResult{Index: i}
	}

	workChan := make(chan batchItem, numWorkers*2)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workChan {
				sig, err := c.Sign(ctx, item.message)
				// Each index is written by exactly one worker.
				results[item.index].Signature = sig
				results[item.index].Err = err
			}
		}()
	}

	next := 0
feed:
	for ; next < len(messages); next++ {
		select {
		case <-ctx.Done():
			break feed
		case workChan <- batchItem{index: next, message: messages[next]}:
		}
	}
	close(workChan)
	wg.Wait()

	for i := next; i < len(messages); i++ {
		results[i].Err = ctx.Err()
	}
	return results
}
