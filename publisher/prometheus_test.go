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
	"errors"
	"testing"

	"github.com/cossacklabs/privatepublisher/token"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusChannelWrapper(t *testing.T) {
	const name = "test-channel"
	success := PublishCounter.WithLabelValues(token.LabelStatusSuccess, name)
	fail := PublishCounter.WithLabelValues(token.LabelStatusFail, name)
	successBefore, failBefore := testutil.ToFloat64(success), testutil.ToFloat64(fail)

	channelErr := errors.New("failed")
	var result error
	wrapper := NewPrometheusChannelWrapper(ChannelFunc(func(context.Context, []byte, string, Headers) error {
		return result
	}), name)

	assert.NoError(t, wrapper.Publish(context.Background(), []byte("token"), "", nil))
	assert.NoError(t, wrapper.Publish(context.Background(), []byte("token"), "", nil))
	result = channelErr
	assert.Equal(t, channelErr, wrapper.Publish(context.Background(), []byte("token"), "", nil))

	assert.Equal(t, successBefore+2, testutil.ToFloat64(success))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(fail))
}

func TestRegisterMetricsTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		RegisterMetrics()
		RegisterMetrics()
	})
}
