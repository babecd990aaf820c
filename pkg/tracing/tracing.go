// Package tracing 提供基于OpenTelemetry的分布式追踪
//
// 核心概念:
// - Trace:一个完整的请求链路(如一次下单),包含多个Span
// - Span:一个操作单元(如锁库存、写订单),记录耗时和状态
// - SpanContext:跨服务传递的TraceID/SpanID
//
// 本项目在HTTP入口和下单管线上打Span,通过OTLP gRPC导出到Jaeger。
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer 初始化全局Tracer Provider
//
// 参数：
//   - serviceName: 服务名称（在Jaeger UI中显示）
//   - collectorURL: OTLP gRPC端点（如 localhost:4317）
//
// 返回关闭函数,程序退出时调用,确保最后一批Span被刷出。
//
// 设计要点：
// 1. 使用OTLP协议而非Jaeger原生协议（厂商中立,可切换Zipkin/Datadog）
// 2. 采样策略：AlwaysSample适合开发环境,
//    生产环境建议TraceIDRatioBased(0.01)做1%采样
func InitTracer(serviceName, collectorURL string) (func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 1. 创建OTLP gRPC Exporter
	exporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(collectorURL),
		otlptracegrpc.WithInsecure(), // 禁用TLS（生产环境应启用）
	)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP exporter失败: %w", err)
	}

	// 2. 创建Resource（资源属性）
	// service.name是必需属性,用于在Jaeger UI中标识服务
	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("创建资源属性失败: %w", err)
	}

	// 3. 创建Tracer Provider
	// BatchSpanProcessor批量发送Span,默认每2秒或512个发送一次
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	// 4. 设置全局TracerProvider
	// 业务代码无需传递Provider,直接用otel.Tracer()获取
	otel.SetTracerProvider(tp)

	// 5. 设置全局TextMapPropagator（跨服务传递TraceID/SpanID）
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, // W3C Trace Context
			propagation.Baggage{},
		),
	)

	// 6. 返回关闭函数
	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}

	return shutdown, nil
}

// StartSpan 创建一个新的Span（便捷函数）
//
// ctx包含父Span时新Span自动成为子Span,否则成为根Span。
// 必须用返回的ctx调用下游函数,否则无法构建调用树。
//
// 示例：
//
//	func PlaceOrder(ctx context.Context) error {
//	    ctx, span := tracing.StartSpan(ctx, "bookshop", "PlaceOrder")
//	    defer span.End()
//	    // ... 业务逻辑 ...
//	}
func StartSpan(ctx context.Context, tracerName, spanName string) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, spanName)
}

// ExtractTraceID 从Context提取TraceID（用于关联日志）
//
// 在日志中带上TraceID,便于从日志跳到Jaeger的完整链路：
//
//	log.Printf("TraceID=%s, 订单创建成功, OrderNo=%s", tracing.ExtractTraceID(ctx), orderNo)
func ExtractTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().TraceID().String()
}

// ExtractSpanID 从Context提取SpanID
func ExtractSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().SpanID().String()
}
