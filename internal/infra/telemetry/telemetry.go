package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arklim/account-otp-service/internal/infra/config"
)

// Provider represents a telemetry provider handle.
type Provider struct {
	otpIssued   *prometheus.CounterVec
	otpVerified *prometheus.CounterVec
}

// Attach configures telemetry exporters and returns a provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	issued := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "account",
		Subsystem: "otp",
		Name:      "issued_total",
		Help:      "Total number of one-time codes issued, partitioned by flow.",
	}, []string{"flow"})

	verified := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "account",
		Subsystem: "otp",
		Name:      "verifications_total",
		Help:      "Total number of verification attempts, partitioned by outcome.",
	}, []string{"outcome"})

	return &Provider{
		otpIssued:   issued,
		otpVerified: verified,
	}, nil
}

// OTPIssued exposes the issuance counter.
func (p *Provider) OTPIssued() *prometheus.CounterVec {
	if p == nil {
		return prometheus.NewCounterVec(prometheus.CounterOpts{}, []string{"flow"})
	}
	return p.otpIssued
}

// OTPVerified exposes the verification outcome counter.
func (p *Provider) OTPVerified() *prometheus.CounterVec {
	if p == nil {
		return prometheus.NewCounterVec(prometheus.CounterOpts{}, []string{"outcome"})
	}
	return p.otpVerified
}
