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
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCodecWrapper(t *testing.T) {
	codec := NewPrometheusCodecWrapper(NewCodec())
	key := testKey(t)

	sealSuccess := testutil.ToFloat64(SealCounter.WithLabelValues(LabelStatusSuccess))
	openSuccess := testutil.ToFloat64(OpenCounter.WithLabelValues(LabelStatusSuccess, ""))
	openBadSignature := testutil.ToFloat64(OpenCounter.WithLabelValues(LabelStatusFail, BadSignature.String()))
	openExpired := testutil.ToFloat64(OpenCounter.WithLabelValues(LabelStatusFail, Expired.String()))

	token, err := codec.Seal([]byte("some data"), key)
	require.NoError(t, err)
	_, err = codec.Open(token, key)
	require.NoError(t, err)

	otherKey, err := GenerateKey()
	require.NoError(t, err)
	_, err = codec.Open(token, otherKey)
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = codec.OpenWithTTL([]byte(referenceToken), key, time.Second)
	assert.ErrorIs(t, err, ErrExpired)

	assert.Equal(t, sealSuccess+1, testutil.ToFloat64(SealCounter.WithLabelValues(LabelStatusSuccess)))
	assert.Equal(t, openSuccess+1, testutil.ToFloat64(OpenCounter.WithLabelValues(LabelStatusSuccess, "")))
	assert.Equal(t, openBadSignature+1, testutil.ToFloat64(OpenCounter.WithLabelValues(LabelStatusFail, BadSignature.String())))
	assert.Equal(t, openExpired+1, testutil.ToFloat64(OpenCounter.WithLabelValues(LabelStatusFail, Expired.String())))
}
