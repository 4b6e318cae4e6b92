// Command ppm-server is the PPM supervisor: it loads configuration,
// builds the geofence spatial index from a shape file, then bootstraps a
// message-bus subscriber/producer pair and runs the consume loop
// described in spec.md §5 until a SIGINT/SIGTERM is received.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jpo-ppm/ppm/core"
	"github.com/jpo-ppm/ppm/internal/bus"
	"github.com/jpo-ppm/ppm/internal/config"
	"github.com/jpo-ppm/ppm/internal/filter"
	"github.com/jpo-ppm/ppm/internal/geo"
	"github.com/jpo-ppm/ppm/internal/log"
	"github.com/jpo-ppm/ppm/internal/metrics"
	"github.com/jpo-ppm/ppm/internal/quad"
	"github.com/jpo-ppm/ppm/internal/shapefile"
	"github.com/jpo-ppm/ppm/internal/stream"
)

const reconnectDelay = 1500 * time.Millisecond

var shutdown atomic.Bool

func main() {
	var (
		configPath string
		mapfile    string
		logLevel   int
	)
	flag.StringVar(&configPath, "c", "", "path to a privacy.* key=value config file")
	flag.StringVar(&configPath, "config", "", "path to a privacy.* key=value config file")
	flag.StringVar(&mapfile, "m", "", "override privacy.filter.geofence.mapfile")
	flag.StringVar(&mapfile, "mapfile", "", "override privacy.filter.geofence.mapfile")
	flag.IntVar(&logLevel, "v", 1, "log level: 0 silent, 1 normal, 2 verbose, 3 very verbose")
	flag.Parse()

	log.SetLevel(logLevel)
	log.Infof("ppm-server %s starting", core.Version)

	cfg := config.New()
	if configPath != "" {
		if err := cfg.LoadFile(configPath); err != nil {
			log.Fatal(err)
		}
	}
	if mapfile != "" {
		cfg.Set(config.KeyGeofenceMapfile, mapfile)
	}

	handlerCfg, err := buildHandlerConfig(cfg)
	if err != nil {
		log.Fatal(err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	signal.Ignore(syscall.SIGHUP)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		log.Warnf("signal: %v, shutting down", s)
		shutdown.Store(true)
	}()

	for !shutdown.Load() {
		if err := bootstrap(cfg, handlerCfg, m); err != nil {
			log.Errorf("bootstrap: %v, reconnecting in %s", err, reconnectDelay)
			time.Sleep(reconnectDelay)
		}
	}

	log.Infof("shutdown complete: %s", m.Summary())
}

// bootstrap opens the bus, awaits the consumer topic, and runs the
// consume loop until a fatal bus error or a shutdown signal, matching
// spec.md §5/§7's bootstrap/reconnect relationship.
func bootstrap(cfg *config.Config, hcfg stream.Config, m *metrics.Metrics) error {
	b, err := openBus(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	consumerTopic := cfg.String(config.KeyTopicConsumer, "")
	producerTopic := cfg.String(config.KeyTopicProducer, "")
	partition, err := cfg.Int(config.KeyKafkaPartition, 0)
	if err != nil {
		return err
	}
	timeoutMS, err := cfg.Int(config.KeyConsumerTimeoutMS, 1000)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := b.AwaitTopic(ctx, consumerTopic); err != nil {
		return err
	}

	h := stream.NewHandler(hcfg)
	timeout := time.Duration(timeoutMS) * time.Millisecond

	for !shutdown.Load() {
		msg, code, err := b.Poll(ctx, timeout)
		if code.Transient() {
			continue
		}
		if code.Fatal() {
			if err != nil {
				log.Errorf("consume: %v", err)
			}
			return fmt.Errorf("bus error: %s", code)
		}
		if err != nil {
			log.Errorf("consume: %v", err)
			continue
		}

		m.RecordReceived(len(msg.Payload))
		ok, output, result := h.Process(msg.Payload)
		if !ok {
			m.RecordSuppressed(result.String(), len(msg.Payload))
			log.Suppressed(result.String(), h.BSM().LogString())
			continue
		}

		log.Retained(h.BSM().LogString())
		pcode, perr := b.Produce(ctx, producerTopic, int32(partition), []byte(output))
		if perr != nil || pcode != bus.None {
			m.ProduceFailures.Inc()
			log.Errorf("produce failed: %s: %v", pcode, perr)
			continue
		}
		m.RecordSent(len(output))
	}
	return nil
}

// openBus selects a bus driver by privacy.bus.type. kafka implements both
// halves of bus.Bus; the other drivers are producer-only and report
// bus.ErrNotImplemented from AwaitTopic/Poll if ever invoked.
func openBus(cfg *config.Config) (bus.Bus, error) {
	driver := cfg.String(config.KeyBusType, "kafka")
	host := cfg.String(config.KeyBusHost, "localhost")

	switch driver {
	case "kafka", "":
		port, err := strconv.Atoi(cfg.String(config.KeyKafkaPort, "9092"))
		if err != nil {
			return nil, err
		}
		partition, err := cfg.Int(config.KeyKafkaPartition, 0)
		if err != nil {
			return nil, err
		}
		return bus.NewKafkaBus(bus.KafkaConfig{Host: host, Port: port, Partition: int32(partition)})
	case "mqtt":
		return bus.NewMQTTProducer(bus.MQTTConfig{Host: host, Port: 1883, QueueName: cfg.String(config.KeyTopicProducer, "")}), nil
	case "nats":
		return bus.NewNATSProducer(bus.NATSConfig{Host: host, Port: 4222, Subject: cfg.String(config.KeyTopicProducer, "")}), nil
	case "pubsub":
		return bus.NewPubSubProducer(bus.PubSubConfig{Project: host, Topic: cfg.String(config.KeyTopicProducer, "")}), nil
	case "amqp":
		return bus.NewAMQPProducer(bus.AMQPConfig{Host: host, Port: 5672, QueueName: cfg.String(config.KeyTopicProducer, "")}), nil
	case "redis":
		return bus.NewRedisProducer(bus.RedisConfig{Host: host, Port: 6379, Channel: cfg.String(config.KeyTopicProducer, "")}), nil
	default:
		return nil, fmt.Errorf("unrecognized %s: %q", config.KeyBusType, driver)
	}
}

// buildHandlerConfig assembles the streaming handler's Config from cfg:
// which filters are active, the velocity band, the geofence index (built
// from the configured shape file), and the id redactor.
func buildHandlerConfig(cfg *config.Config) (stream.Config, error) {
	var flags stream.Flag
	if cfg.Bool(config.KeyVelocityFilter) {
		flags |= stream.Velocity
	}
	if cfg.Bool(config.KeyGeofenceFilter) {
		flags |= stream.Geofence
	}
	if cfg.Bool(config.KeyIDRedaction) {
		flags |= stream.IDRedact
	}

	hcfg := stream.Config{Flags: flags}

	if flags&stream.Velocity != 0 {
		min, err := cfg.RequireFloat64(config.KeyVelocityMin)
		if err != nil {
			return stream.Config{}, err
		}
		max, err := cfg.RequireFloat64(config.KeyVelocityMax)
		if err != nil {
			return stream.Config{}, err
		}
		hcfg.Velocity = filter.Velocity{Min: min, Max: max}
	}

	if flags&stream.Geofence != 0 {
		q, err := buildGeofence(cfg)
		if err != nil {
			return stream.Config{}, err
		}
		hcfg.Geofence = q
	}

	if flags&stream.IDRedact != 0 {
		replacement := cfg.String(config.KeyRedactionValue, "FFFFFFFF")
		r := filter.NewIDRedactor(replacement)
		if cfg.Bool(config.KeyRedactionIncl) {
			r.ClearInclusions()
			for _, id := range cfg.StringSlice(config.KeyRedactionIncluded) {
				r.AddIdInclusion(id)
			}
		} else {
			r.RedactAll()
		}
		hcfg.Redactor = r
	}

	return hcfg, nil
}

// buildGeofence constructs the root quadtree from the configured bounds
// and populates it from the shape file, matching ppm.cpp's BuildGeofence.
func buildGeofence(cfg *config.Config) (*quad.Quad, error) {
	swLat, err := cfg.RequireFloat64(config.KeyGeofenceSWLat)
	if err != nil {
		return nil, err
	}
	swLon, err := cfg.RequireFloat64(config.KeyGeofenceSWLon)
	if err != nil {
		return nil, err
	}
	neLat, err := cfg.RequireFloat64(config.KeyGeofenceNELat)
	if err != nil {
		return nil, err
	}
	neLon, err := cfg.RequireFloat64(config.KeyGeofenceNELon)
	if err != nil {
		return nil, err
	}

	q, err := quad.New(
		geo.Location{Point: geo.Point{Lat: swLat, Lon: swLon}},
		geo.Location{Point: geo.Point{Lat: neLat, Lon: neLon}},
	)
	if err != nil {
		return nil, err
	}

	mapfile, err := cfg.RequireString(config.KeyGeofenceMapfile)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(mapfile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	extension, err := cfg.Float64(config.KeyGeofenceExtension, 0)
	if err != nil {
		return nil, err
	}
	blacklist := shapefile.NewBlacklist(cfg.StringSlice(config.KeyGeofenceBlacklist)...)
	loader := shapefile.NewLoader(blacklist, extension)
	if err := loader.Load(f, q); err != nil {
		return nil, err
	}
	log.Infof("geofence loaded: %d edges, %d circles, %d grid cells", loader.Edges, loader.Circles, loader.Grids)
	return q, nil
}
