/*
Copyright 2026, Cossack Labs Limited

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package token

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sealer abstracts token sealing
type Sealer interface {
	Seal(plaintext []byte, key *Key) ([]byte, error)
}

// Opener abstracts token opening
type Opener interface {
	Open(token []byte, key *Key) ([]byte, error)
	OpenWithTTL(token []byte, key *Key, ttl time.Duration) ([]byte, error)
}

// SealOpener implemented by Codec and its wrappers
type SealOpener interface {
	Sealer
	Opener
}

// Labels of token metrics
const (
	LabelStatus        = "status"
	LabelStatusFail    = "fail"
	LabelStatusSuccess = "success"
	LabelReason        = "reason"
)

var (
	// SealCounter collect seal count success/failed
	SealCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "privatepublisher_token_seal_total",
			Help: "number of sealed tokens",
		}, []string{LabelStatus})

	// OpenCounter collect open count success/failed with rejection reason
	OpenCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "privatepublisher_token_open_total",
			Help: "number of opened tokens",
		}, []string{LabelStatus, LabelReason})
)

var registerLock = sync.Once{}

// RegisterMetrics register in default prometheus registry token metrics
func RegisterMetrics() {
	registerLock.Do(func() {
		prometheus.MustRegister(SealCounter)
		prometheus.MustRegister(OpenCounter)
	})
}

// PrometheusCodecWrapper wraps SealOpener with adding prometheus metrics logic
type PrometheusCodecWrapper struct {
	SealOpener
}

// NewPrometheusCodecWrapper create new SealOpener prometheus wrapper
func NewPrometheusCodecWrapper(codec SealOpener) PrometheusCodecWrapper {
	return PrometheusCodecWrapper{SealOpener: codec}
}

// Seal proxy SealOpener.Seal with prometheus metrics
func (w PrometheusCodecWrapper) Seal(plaintext []byte, key *Key) ([]byte, error) {
	sealed, err := w.SealOpener.Seal(plaintext, key)
	if err != nil {
		SealCounter.WithLabelValues(LabelStatusFail).Inc()
		return nil, err
	}
	SealCounter.WithLabelValues(LabelStatusSuccess).Inc()
	return sealed, nil
}

// Open proxy SealOpener.Open with prometheus metrics
func (w PrometheusCodecWrapper) Open(token []byte, key *Key) ([]byte, error) {
	return countOpen(w.SealOpener.Open(token, key))
}

// OpenWithTTL proxy SealOpener.OpenWithTTL with prometheus metrics
func (w PrometheusCodecWrapper) OpenWithTTL(token []byte, key *Key, ttl time.Duration) ([]byte, error) {
	return countOpen(w.SealOpener.OpenWithTTL(token, key, ttl))
}

func countOpen(plaintext []byte, err error) ([]byte, error) {
	if err != nil {
		reason := "unknown"
		var tokenErr *TokenError
		if errors.As(err, &tokenErr) {
			reason = tokenErr.Kind.String()
		}
		OpenCounter.WithLabelValues(LabelStatusFail, reason).Inc()
		return nil, err
	}
	OpenCounter.WithLabelValues(LabelStatusSuccess, "").Inc()
	return plaintext, nil
}
