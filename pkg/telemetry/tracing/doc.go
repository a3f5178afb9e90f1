// Package tracing provides OpenTelemetry tracing for batch runs and formula
// evaluations.
//
// Spans are exported over OTLP gRPC when telemetry.tracing.enabled is set;
// otherwise the tracer is a no-op:
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "batch.run")
//	defer span.End()
package tracing
