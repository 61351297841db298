/*
Package server implements msgpack IPC for prefix completion.

Clients write a stream of msgpack maps to stdin and read one msgpack map per
request from stdout. Every request carries an ID that is echoed back.

A suggestion request:

	{"id": "req_001", "cmd": "suggest", "p": "use", "l": 24}

is answered with the matching terms in lexicographic order, their 1-based
rank, the count and the time taken in microseconds:

	{"id": "req_001", "s": [{"w": "useful", "r": 1}, {"w": "useless", "r": 2}], "c": 2, "t": 14}

"cmd" defaults to "suggest". Setting "u": true skips sorting. A missing "p"
is rejected with code 400; an empty "p" is a valid prefix matching every term.

Cache introspection:

	{"id": "c1", "cmd": "cache_info"}
	{"id": "c2", "cmd": "cache_clear"}

and a liveness probe:

	{"id": "h1", "cmd": "health"}

Errors are reported as {"id": ..., "e": message, "c": code}.
*/
package server

// Request is any message a client sends.
type Request struct {
	ID       string  `msgpack:"id"`
	Cmd      string  `msgpack:"cmd,omitempty"`
	Prefix   *string `msgpack:"p,omitempty"`
	Limit    int     `msgpack:"l,omitempty"`
	Unsorted bool    `msgpack:"u,omitempty"`
}

// CompletionSuggestion - minimal suggestion response
type CompletionSuggestion struct {
	Word string `msgpack:"w"`
	Rank uint16 `msgpack:"r"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	TimeTaken   int64                  `msgpack:"t"`
}

// StatusResponse answers health and cache_clear.
type StatusResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
}

// CacheResponse answers cache_info. Size is -1 without a cache.
type CacheResponse struct {
	ID       string              `msgpack:"id"`
	HasCache bool                `msgpack:"has_cache"`
	Size     int                 `msgpack:"size"`
	Entries  map[string][]string `msgpack:"entries,omitempty"`
}

// CompletionError holds basic error information for failed requests
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
