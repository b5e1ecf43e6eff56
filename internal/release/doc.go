// Package release defines the release context that is threaded through
// every pipeline stage, together with the release type ordering, semantic
// version arithmetic and the ${...} template syntax used by stage options.
//
// A Context is created empty when a run starts, filled in by the stages
// one at a time, and discarded when the run ends. It is never shared
// between goroutines.
package release
