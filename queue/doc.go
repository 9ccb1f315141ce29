// Package queue implements Redis-backed distribution of fetch work.
//
// Fetch jobs are pushed onto per-platform lists and popped by workers; each
// worker runs a platform fetcher against the job's identifier and publishes
// the serialized node to a job-specific pub/sub channel. Fetcher metadata,
// worker counts and health keys live alongside the queues so a coordinator
// can discover which platforms have live capacity.
//
// Key layout:
//
//	fetcher:<platform>:queue    work list (LPUSH by producers, BRPOP by workers)
//	fetcher:<platform>:meta     fetcher metadata hash
//	fetcher:<platform>:health   heartbeat key with TTL
//	fetcher:<platform>:workers  live worker count
//	fetchers:available          set of registered platforms
//	results:<job_id>            pub/sub channel for batch results
package queue
