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

package logging

// Event codes for different events in private-publisher, splitted by groups.
const (
	// 100 .. 200 some events
	EventCodeGeneral = 100

	// 500 .. 600 errors
	EventCodeErrorGeneral    = 500
	EventCodeErrorWrongParam = 501

	// processes
	EventCodeErrorCantStartService      = 505
	EventCodeErrorWrongConfiguration    = 507
	EventCodeErrorCantReadServiceConfig = 508

	// keys
	EventCodeErrorCantLoadKey      = 510
	EventCodeErrorInvalidKey       = 511
	EventCodeErrorCantGenerateKey  = 512
	EventCodeErrorCantReadPassword = 513

	// tokens
	EventCodeErrorCantSealMessage = 520
	EventCodeErrorCantOpenToken   = 521
	EventCodeErrorForwardedEmpty  = 522

	// publishing
	EventCodeErrorCantPublish       = 530
	EventCodeErrorCantConnectRedis  = 531
	EventCodeErrorCantOpenOutbox    = 532
	EventCodeErrorCantDrainOutbox   = 533
	EventCodeErrorCantReadInput     = 534
	EventCodeErrorCantWriteOutput   = 535
	EventCodeErrorCantCloseResource = 536

	// tracing
	EventCodeErrorJaegerInvalidParameters = 811
	EventCodeErrorJaegerExporter          = 812

	// metrics
	EventCodeErrorPrometheusHTTPHandler = 1000
)
