// Package llm provides an OpenAI-compatible chat completion client used as
// the classification oracle.
//
// # Request Shape
//
// Every request carries a system and a user prompt, temperature 0, and
// response_format json_object. The default endpoint is OpenAI; any compatible
// gateway (OpenRouter, a local proxy) works by changing base_url.
//
// # Entry Points
//
// NewClient: construct a client from Config and options.
// Client.CompleteJSON: send system/user prompts, receive the raw JSON content.
// Client.HealthCheck: verify API key and model availability.
// DecodeLLMJSON: decode model output, tolerating code fences and chatter.
//
// # Retry and Rate Limiting
//
// Transport errors, 408, 429 and 5xx responses are retried by the shared
// retryablehttp client (see services.NewHTTPClient), which honours
// Retry-After. An optional rate.Limiter spaces requests across a run.
// Context cancellation aborts both the wait and any pending retry.
//
// # Errors
//
// Failures are tagged with the services markers: a missing key is
// ErrConfiguration, HTTP statuses map through services.StatusMarker, and an
// empty completion is ErrExternalTool.
package llm
