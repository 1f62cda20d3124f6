// Package telemetry configures OpenTelemetry tracing.
//
// Reconciliation cycles and plan operations open spans through the global tracer
// provider. InitTracer replaces it with an SDK provider that writes spans to stdout;
// with tracing disabled the spans are no-ops.
//
// # Usage
//
//	tp, err := telemetry.InitTracer(cfg.Telemetry)
//	if err != nil {
//	    return err
//	}
//	defer telemetry.Shutdown(context.Background(), tp)
package telemetry
