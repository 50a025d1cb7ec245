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

package publisher

import (
	"context"
	"sync"

	"github.com/cossacklabs/privatepublisher/token"
	"github.com/prometheus/client_golang/prometheus"
)

// LabelChannel name of the channel label
const LabelChannel = "channel"

// PublishCounter collect publish count success/failed per channel
var PublishCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "privatepublisher_publish_total",
		Help: "number of published messages",
	}, []string{token.LabelStatus, LabelChannel})

var registerLock = sync.Once{}

// RegisterMetrics register in default prometheus registry publisher and token metrics
func RegisterMetrics() {
	registerLock.Do(func() {
		prometheus.MustRegister(PublishCounter)
	})
	token.RegisterMetrics()
}

// PrometheusChannelWrapper wraps Channel with adding prometheus metrics logic
type PrometheusChannelWrapper struct {
	Channel
	name string
}

// NewPrometheusChannelWrapper create new Channel prometheus wrapper, name used as channel label value
func NewPrometheusChannelWrapper(channel Channel, name string) PrometheusChannelWrapper {
	return PrometheusChannelWrapper{Channel: channel, name: name}
}

// Publish proxy Channel.Publish with prometheus metrics
func (w PrometheusChannelWrapper) Publish(ctx context.Context, body []byte, contentType string, headers Headers) error {
	if err := w.Channel.Publish(ctx, body, contentType, headers); err != nil {
		PublishCounter.WithLabelValues(token.LabelStatusFail, w.name).Inc()
		return err
	}
	PublishCounter.WithLabelValues(token.LabelStatusSuccess, w.name).Inc()
	return nil
}
