package logger_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

func TestNew_NivelDesconocidoCaeEnInfo(t *testing.T) {
	log := logger.New(logger.Config{Env: "production", Level: "verboso"})
	assert.Equal(t, zerolog.InfoLevel, log.Zerolog().GetLevel())
}

func TestNew_NivelConEspaciosSeNormaliza(t *testing.T) {
	log := logger.New(logger.Config{Env: "production", Level: " Error "})
	assert.Equal(t, zerolog.ErrorLevel, log.Zerolog().GetLevel())
}

func TestComponent_AgregaCampoFijo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info"})

	zl := log.Component("ledger").Zerolog().Output(&buf)
	zl.Info().Msg("evento")

	assert.Contains(t, buf.String(), `"component":"ledger"`)
	assert.Contains(t, buf.String(), `"message":"evento"`)
}
