package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsDBQueriesSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_db_queries_succeeded",
		Help:         "stats_db_queries_succeeded provides total database queries succeeded",
		RequiredTags: []string{"database"},
	}

	StatsDBQueriesFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_db_queries_failed",
		Help:         "stats_db_queries_failed provides total database queries failed",
		RequiredTags: []string{"database"},
	}

	StatsDBRowsReturned = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_db_rows_returned",
		Help:         "stats_db_rows_returned provides total rows returned by database queries",
		RequiredTags: []string{"database"},
	}

	StatsLLMInputTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_input_tokens",
		Help:         "stats_llm_input_tokens provides total input tokens sent to LLM",
		RequiredTags: []string{"tool", "model"},
	}

	StatsLLMOutputTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_output_tokens",
		Help:         "stats_llm_output_tokens provides total output tokens received from LLM",
		RequiredTags: []string{"tool", "model"},
	}

	StatsLLMTotalTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_total_tokens",
		Help:         "stats_llm_total_tokens provides total tokens sent and received from LLM",
		RequiredTags: []string{"tool", "model"},
	}

	StatsHTTPRequests = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_http_requests",
		Help:         "stats_http_requests provides total HTTP requests served",
		RequiredTags: []string{"method", "path", "status"},
	}

	StatsEmbeddingsCreated = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_embeddings_created",
		Help:         "stats_embeddings_created provides total embeddings created",
		RequiredTags: []string{"model"},
	}

	StatsRerankRequests = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_rerank_requests",
		Help:         "stats_rerank_requests provides total rerank requests",
		RequiredTags: []string{"model"},
	}
)

// Perf
var (
	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}

	PerfDBQuery = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_db_query",
		Help:         "perf_db_query provides duration of database query",
		RequiredTags: []string{"database"},
	}

	PerfHTTPRequest = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_http_request",
		Help:         "perf_http_request provides duration of HTTP request",
		RequiredTags: []string{"path"},
	}

	PerfLLMCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_llm_call",
		Help:         "perf_llm_call provides duration of LLM call",
		RequiredTags: []string{"model"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfDBQuery,
	&PerfHTTPRequest,
	&PerfLLMCall,
	&PerfToolCall,
	&StatsDBQueriesFailed,
	&StatsDBQueriesSucceeded,
	&StatsDBRowsReturned,
	&StatsEmbeddingsCreated,
	&StatsHTTPRequests,
	&StatsLLMInputTokens,
	&StatsLLMOutputTokens,
	&StatsLLMTotalTokens,
	&StatsRerankRequests,
	&StatsToolCallsFailed,
	&StatsToolCallsSucceeded,
}
