package samples

import "time"

// nowFunc is a seam for latency measurement in tests; production code
// never overrides it.
var nowFunc = time.Now
