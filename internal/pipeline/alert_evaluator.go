package pipeline

import (
	"fmt"
	"strings"

	"car-telemetry/backend/internal/domain"
)

// AlertEvaluator checks samples against a static threshold table. Check is
// pure: no side effects, same sample always yields the same alerts.
type AlertEvaluator struct {
	thresholds map[string]domain.Threshold
}

func NewAlertEvaluator(thresholds map[string]domain.Threshold) *AlertEvaluator {
	if thresholds == nil {
		thresholds = domain.DefaultThresholds
	}
	return &AlertEvaluator{thresholds: thresholds}
}

// Check returns zero to four alerts, one per breached metric, in the fixed
// order speed, engine_rpm, fuel_level, engine_temperature. A metric breaches
// the max 20% past it (or the min 20% short of it) at severity high, anything
// else outside the band at medium.
func (e *AlertEvaluator) Check(sample *domain.TelemetrySample) []domain.Alert {
	var alerts []domain.Alert

	for _, metric := range domain.MonitoredMetrics {
		band, ok := e.thresholds[metric]
		if !ok {
			continue
		}
		value := metricValue(sample, metric)

		switch {
		case value > band.Max:
			severity := domain.SeverityMedium
			if value > band.Max*1.2 {
				severity = domain.SeverityHigh
			}
			alerts = append(alerts, domain.Alert{
				VehicleID: sample.VehicleID,
				Metric:    metric,
				Value:     value,
				Threshold: band.Max,
				Severity:  severity,
				Message:   fmt.Sprintf("%s is critically high: %v", metricLabel(metric), value),
			})
		case value < band.Min:
			severity := domain.SeverityMedium
			if value < band.Min*0.8 {
				severity = domain.SeverityHigh
			}
			alerts = append(alerts, domain.Alert{
				VehicleID: sample.VehicleID,
				Metric:    metric,
				Value:     value,
				Threshold: band.Min,
				Severity:  severity,
				Message:   fmt.Sprintf("%s is critically low: %v", metricLabel(metric), value),
			})
		}
	}

	return alerts
}

func metricValue(sample *domain.TelemetrySample, metric string) float64 {
	switch metric {
	case domain.MetricSpeed:
		return sample.Speed
	case domain.MetricEngineRPM:
		return sample.EngineRPM
	case domain.MetricFuelLevel:
		return sample.FuelLevel
	case domain.MetricEngineTemp:
		return sample.EngineTemperature
	default:
		return 0
	}
}

// metricLabel turns "engine_rpm" into "Engine Rpm" for alert messages.
func metricLabel(metric string) string {
	words := strings.Split(metric, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
