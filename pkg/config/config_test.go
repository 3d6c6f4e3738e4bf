package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 12, cfg.Planning.HorizonWeeks)
	assert.Equal(t, 1, cfg.Planning.LoadingBufferWeeks)
	assert.Equal(t, 5, cfg.Planning.TransitWeeks)
	assert.Equal(t, 2, cfg.Planning.InboundBufferWeeks)
	assert.False(t, cfg.Events.Enabled(), "sin KAFKA_BROKERS no se publican eventos")
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_OverridesYBrokers(t *testing.T) {
	v := viper.New()
	v.Set("PLANNING_HORIZON_WEEKS", "20")
	v.Set("PLANNING_TRANSIT_WEEKS", 3)
	v.Set("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Planning.HorizonWeeks)
	assert.Equal(t, 3, cfg.Planning.TransitWeeks)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.Brokers)
	assert.True(t, cfg.Events.Enabled())
}

func TestFromViper_HorizonFueraDeRango(t *testing.T) {
	v := viper.New()
	v.Set("PLANNING_HORIZON_WEEKS", 60)

	_, err := fromViper(v)
	assert.Error(t, err, "el horizonte no puede superar el máximo configurado")
}

func TestFromViper_BufferNegativo(t *testing.T) {
	v := viper.New()
	v.Set("PLANNING_INBOUND_BUFFER_WEEKS", -1)

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "scm", Password: "p@ss:w/rd", DBName: "scm", SSLMode: "disable"}
	assert.Equal(t, "postgres://scm:p%40ss%3Aw%2Frd@db:5432/scm?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
