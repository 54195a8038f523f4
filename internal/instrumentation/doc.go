// Package instrumentation wires OpenTelemetry metrics and traces plus the tool
// audit log for workspace-console.
//
// Metrics, by label set:
//
//	http_requests_total, http_request_duration_seconds           method, path, status
//	active_sessions                                              -
//	google_api_operations_total, ..._duration_seconds            service, operation, status
//	credential_exchanges_total, ..._duration_seconds             result [, domain]
//	mail_classifier_verdicts_total                               verdict
//	mail_harvest_item_errors_total                               kind
//	admin_verification_cache_total                               result (hit, miss)
//	mcp_tool_invocations_total, mcp_tool_duration_seconds        tool, status
//
// The domain label appears only with DetailedLabels. No metric, span or
// redacted audit line carries a full email address.
//
// Spans are named tool.<name> for MCP tools and google.<service>.<operation>
// for Google API calls.
//
// DefaultConfig reads the usual OTEL_* variables along with INSTRUMENTATION_ENABLED,
// METRICS_EXPORTER (prometheus, otlp, stdout), TRACING_EXPORTER (otlp,
// stdout, none) and DEPLOYMENT_ENVIRONMENT. The configuration file's
// instrumentation section is applied on top by the caller.
//
// With the prometheus exporter, Provider.MetricsHandler serves a private
// registry holding the recorded metrics and the Go runtime and process collectors.
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	err = instrumentation.ObserveGoogleCall(ctx, provider.Metrics(),
//		instrumentation.ServiceGmail, instrumentation.OperationList, listMessages)
package instrumentation
