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

package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"io"

	"github.com/cossacklabs/privatepublisher/cmd"
	"github.com/cossacklabs/privatepublisher/logging"
	"github.com/cossacklabs/privatepublisher/publisher"
	"github.com/cossacklabs/privatepublisher/publisher/outbox"
	"github.com/cossacklabs/privatepublisher/publisher/redis"
	"github.com/cossacklabs/privatepublisher/token"
	"github.com/cossacklabs/privatepublisher/utils"
	log "github.com/sirupsen/logrus"
)

// Channel names used as metric labels
const (
	channelNameRedis  = "redis"
	channelNameOutbox = "outbox"
)

// Errors of channel configuration
var (
	ErrNoChannel        = errors.New("neither redis_host_port nor outbox_path is set")
	ErrAmbiguousChannel = errors.New("redis_host_port and outbox_path can't be used simultaneously")
	ErrEmptyOutboxPath  = errors.New("outbox_path is empty")
)

func openRedisChannel(options *cmd.RedisOptions) (publisher.Channel, func(), error) {
	if err := options.Validate(); err != nil {
		return nil, nil, err
	}
	client, err := redis.NewClient(options.Options())
	if err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantConnectRedis).WithError(err).
			WithField("host", options.HostPort).Errorln("Can't connect to redis")
		return nil, nil, err
	}
	channel, err := redis.NewChannel(client, options.Channel)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return channel, func() {
		if err := client.Close(); err != nil {
			log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantCloseResource).WithError(err).Warningln("Can't close redis client")
		}
	}, nil
}

func openOutbox(path string) (*outbox.Outbox, func(), error) {
	box, err := outbox.Open(path)
	if err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantOpenOutbox).WithError(err).
			WithField("path", path).Errorln("Can't open outbox")
		return nil, nil, err
	}
	return box, func() {
		if err := box.Close(); err != nil {
			log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantCloseResource).WithError(err).Warningln("Can't close outbox")
		}
	}, nil
}

// PublishSubcommand is the "private-publisher publish" subcommand.
type PublishSubcommand struct {
	CommonParameters
	KeyParameters
	ServiceParameters
	flagSet *flag.FlagSet

	contentType            string
	headers                headerList
	lines                  bool
	forwardEmptyOnKeyError bool
	outboxPath             string
	redis                  cmd.RedisOptions

	// used instead of redis or outbox if set
	channel publisher.Channel
}

// Name returns the same of this subcommand.
func (p *PublishSubcommand) Name() string {
	return CmdPublish
}

// GetFlagSet returns flag set of this subcommand.
func (p *PublishSubcommand) GetFlagSet() *flag.FlagSet {
	return p.flagSet
}

// RegisterFlags registers command-line flags of "private-publisher publish".
func (p *PublishSubcommand) RegisterFlags() {
	p.flagSet = flag.NewFlagSet(CmdPublish, flag.ContinueOnError)
	p.CommonParameters.Register(p.flagSet)
	p.KeyParameters.Register(p.flagSet)
	p.ServiceParameters.Register(p.flagSet)
	p.flagSet.StringVar(&p.contentType, "content_type", "text/plain", "Content type passed with token")
	p.flagSet.Var(&p.headers, "header", "Header in form name=value passed with token, may be repeated")
	p.flagSet.BoolVar(&p.lines, "lines", false, "Publish every non-empty line of stdin as separate message")
	p.flagSet.BoolVar(&p.forwardEmptyOnKeyError, "forward_empty_on_key_error", false, "Publish empty body instead of failing when key is invalid")
	p.flagSet.StringVar(&p.outboxPath, "outbox_path", "", "Store tokens in local outbox file instead of redis")
	p.redis.RegisterRedisParameters(p.flagSet, "", "")
	p.flagSet.Usage = usage(p.flagSet, CmdPublish)
}

// Parse command-line parameters of the subcommand.
func (p *PublishSubcommand) Parse(arguments []string) error {
	if err := parseFlags(p.flagSet, arguments); err != nil {
		return err
	}
	if p.channel != nil {
		return nil
	}
	if p.redis.Configured() && p.outboxPath != "" {
		return ErrAmbiguousChannel
	}
	if !p.redis.Configured() && p.outboxPath == "" {
		return ErrNoChannel
	}
	return p.redis.Validate()
}

func (p *PublishSubcommand) openChannel() (publisher.Channel, string, func(), error) {
	if p.channel != nil {
		return p.channel, "custom", func() {}, nil
	}
	if p.outboxPath != "" {
		box, closeOutbox, err := openOutbox(p.outboxPath)
		if err != nil {
			return nil, "", nil, err
		}
		return box, channelNameOutbox, closeOutbox, nil
	}
	channel, closeClient, err := openRedisChannel(&p.redis)
	if err != nil {
		return nil, "", nil, err
	}
	return channel, channelNameRedis, closeClient, nil
}

// Execute this subcommand.
func (p *PublishSubcommand) Execute(ctx context.Context) error {
	p.SetupLogging()
	stop, err := p.Start()
	if err != nil {
		return err
	}
	defer stop()

	rawKey, err := p.loadRawKey()
	if err != nil {
		return err
	}
	defer utils.ZeroizeBytes(rawKey)
	secret := p.secret(rawKey)

	channel, channelName, closeChannel, err := p.openChannel()
	if err != nil {
		return err
	}
	defer closeChannel()

	logger := log.WithFields(log.Fields{logging.FieldKeyServiceName: cmd.ServiceName, "channel": channelName})
	ctx = logging.SetLoggerToContext(ctx, logger)
	encryptedPublisher, err := publisher.NewEncryptedPublisher(
		publisher.NewPrometheusChannelWrapper(channel, channelName),
		publisher.WithCodec(token.NewPrometheusCodecWrapper(token.NewCodec())),
		publisher.WithLogger(logger),
		publisher.WithForwardEmptyOnKeyError(p.forwardEmptyOnKeyError),
	)
	if err != nil {
		return err
	}

	if !p.lines {
		message, err := io.ReadAll(p.input())
		if err != nil {
			logger.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantReadInput).WithError(err).Errorln("Can't read message")
			return err
		}
		return p.publish(ctx, logger, encryptedPublisher, publisher.BytesPayload(message), secret)
	}

	published := 0
	scanner := bufio.NewScanner(p.input())
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := p.publish(ctx, logger, encryptedPublisher, publisher.TextPayload(line), secret); err != nil {
			return err
		}
		published++
	}
	if err := scanner.Err(); err != nil {
		logger.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantReadInput).WithError(err).Errorln("Can't read message")
		return err
	}
	logger.Infof("Published %d messages", published)
	return nil
}

func (p *PublishSubcommand) publish(ctx context.Context, logger *log.Entry, encryptedPublisher *publisher.EncryptedPublisher, message publisher.Payload, secret publisher.Secret) error {
	err := encryptedPublisher.Publish(ctx, message, p.contentType, p.headers.Headers(), secret)
	if err == nil {
		return nil
	}
	if errors.Is(err, token.ErrInvalidKey) {
		logger.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorInvalidKey).WithError(err).Errorln("Invalid key")
	} else {
		logger.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantPublish).WithError(err).Errorln("Can't publish message")
	}
	return err
}

// DrainSubcommand is the "private-publisher drain" subcommand.
type DrainSubcommand struct {
	CommonParameters
	ServiceParameters
	flagSet *flag.FlagSet

	outboxPath string
	redis      cmd.RedisOptions

	// used instead of redis if set
	channel publisher.Channel
}

// Name returns the same of this subcommand.
func (d *DrainSubcommand) Name() string {
	return CmdDrain
}

// GetFlagSet returns flag set of this subcommand.
func (d *DrainSubcommand) GetFlagSet() *flag.FlagSet {
	return d.flagSet
}

// RegisterFlags registers command-line flags of "private-publisher drain".
func (d *DrainSubcommand) RegisterFlags() {
	d.flagSet = flag.NewFlagSet(CmdDrain, flag.ContinueOnError)
	d.CommonParameters.Register(d.flagSet)
	d.ServiceParameters.Register(d.flagSet)
	d.flagSet.StringVar(&d.outboxPath, "outbox_path", "", "Path to outbox file filled by publish --outbox_path")
	d.redis.RegisterRedisParameters(d.flagSet, "", "")
	d.flagSet.Usage = usage(d.flagSet, CmdDrain)
}

// Parse command-line parameters of the subcommand.
func (d *DrainSubcommand) Parse(arguments []string) error {
	if err := parseFlags(d.flagSet, arguments); err != nil {
		return err
	}
	if d.outboxPath == "" {
		return ErrEmptyOutboxPath
	}
	if d.channel == nil && !d.redis.Configured() {
		return ErrNoChannel
	}
	return d.redis.Validate()
}

// Execute this subcommand.
func (d *DrainSubcommand) Execute(ctx context.Context) error {
	d.SetupLogging()
	stop, err := d.Start()
	if err != nil {
		return err
	}
	defer stop()

	box, closeOutbox, err := openOutbox(d.outboxPath)
	if err != nil {
		return err
	}
	defer closeOutbox()

	channel, channelName := d.channel, "custom"
	if channel == nil {
		redisChannel, closeClient, err := openRedisChannel(&d.redis)
		if err != nil {
			return err
		}
		defer closeClient()
		channel, channelName = redisChannel, channelNameRedis
	}

	drained, err := box.Drain(ctx, publisher.NewPrometheusChannelWrapper(channel, channelName))
	if err != nil {
		log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantDrainOutbox).WithError(err).
			WithField("drained", drained).Errorln("Can't drain outbox")
		return err
	}
	log.WithField("drained", drained).Infoln("Outbox drained")
	return nil
}
