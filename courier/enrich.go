package courier

import (
	"sync"
)

// FetchEnrichment runs the default-address and configuration lookups
// concurrently and waits for both. Neither lookup returns an error: each
// resolves to nil on failure and the caller decides what is terminal.
func (c *Client) FetchEnrichment(clientKey string) EnrichmentBundle {
	var bundle EnrichmentBundle
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		bundle.Address = c.GetDefaultAddress(clientKey)
	}()
	go func() {
		defer wg.Done()
		bundle.Config = c.GetConfiguration(clientKey)
	}()
	wg.Wait()
	return bundle
}
