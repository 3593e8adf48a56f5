package repl

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msto63/euklid/internal/euklid/service"
	"github.com/msto63/euklid/internal/euklid/store"
	"github.com/msto63/euklid/pkg/core/logging"
)

func newSession(t *testing.T, withHistory bool) (*Session, *bytes.Buffer) {
	t.Helper()
	logger := logging.Wrap(logging.NewLogger(logging.LoggerConfig{
		ServiceName: "repl-test",
		Level:       "error",
		Format:      "json",
		Output:      io.Discard,
	}))
	cfg := service.Config{Logger: logger}
	if withHistory {
		cfg.History = store.NewMemoryHistoryStore()
	}
	svc, err := service.NewService(cfg)
	require.NoError(t, err)

	opts := Options{Calculator: svc, Presenter: svc, Locale: "en", Out: &bytes.Buffer{}}
	if withHistory {
		opts.History = svc
	}
	s := NewSession(opts)
	return s, opts.Out.(*bytes.Buffer)
}

func TestExecuteExpression(t *testing.T) {
	s, out := newSession(t, false)
	quit := s.Execute(context.Background(), "1/2 + 1/3")
	assert.False(t, quit)
	assert.Contains(t, out.String(), "Result: 5/6\n")
}

func TestExecuteLoneDecimal(t *testing.T) {
	s, out := newSession(t, false)
	s.Execute(context.Background(), "2.25")
	assert.Contains(t, out.String(), "Fraction: 9/4\n")
	assert.Contains(t, out.String(), "Mixed number: 2 1/4\n")
}

func TestQuit(t *testing.T) {
	s, _ := newSession(t, false)
	assert.True(t, s.Execute(context.Background(), "exit"))
	assert.True(t, s.Execute(context.Background(), "  quit "))
	assert.False(t, s.Execute(context.Background(), ""))
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"lcd", []string{":lcd 1/4, 1/6"}, "Least common denominator: 12\n"},
		{"compare", []string{":compare 1/2 1/3"}, "In ascending order: 1/3 < 1/2\n"},
		{"decimal", []string{":decimal 0.375"}, "Fraction: 3/8\n"},
		{"todecimal", []string{":todecimal 1/8"}, "Decimal: 0.125\n"},
		{"parse", []string{":parse 2 3/4"}, "Result: 11/4\n"},
		{"steps", []string{":steps", "1/2 + 1/4"}, "Steps:\n"},
		{"lang", []string{":lang de", "1/2 ÷ 0"}, "Division durch Null ist nicht definiert.\n"},
		{"output", []string{":output json", "1/2 + 1/2"}, `"result": "1"`},
		{"bad output", []string{":output xml"}, "unknown output format \"xml\"\n"},
		{"unknown", []string{":frobnicate"}, "unknown command :frobnicate, try :help\n"},
		{"help", []string{":help"}, ":todecimal"},
		{"history off", []string{":history"}, "history is not recorded\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, out := newSession(t, false)
			for _, line := range tt.lines {
				s.Execute(context.Background(), line)
			}
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestErrorsAreLocalized(t *testing.T) {
	s, out := newSession(t, false)
	s.Execute(context.Background(), ":lcd 1/2")
	assert.Equal(t, "At least 2 fractions are needed.\n", out.String())
}

func TestHistoryCommand(t *testing.T) {
	s, out := newSession(t, true)
	ctx := context.Background()
	s.Execute(ctx, "1/2 + 1/3")
	s.Execute(ctx, "1/0")
	out.Reset()

	s.Execute(ctx, ":history 5")
	assert.Contains(t, out.String(), "calculate")
	assert.Contains(t, out.String(), "5/6")

	out.Reset()
	s.Execute(ctx, ":history zero")
	assert.Equal(t, "history needs a positive count\n", out.String())
}

func TestComplete(t *testing.T) {
	assert.Equal(t, []string{":decimal "}, complete(":dec"))
	assert.Equal(t, []string{":todecimal "}, complete(":to"))
	assert.Len(t, complete(":"), len(commands))
	assert.Nil(t, complete("1/2"))
	assert.Nil(t, complete(":lcd 1"))
}
