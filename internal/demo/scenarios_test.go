package demo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hashicorp/go-autowire"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func testOptions(out *bytes.Buffer) Options {
	return Options{
		Out:         out,
		Logger:      hclog.NewNullLogger(),
		PhoneNumber: "+4400",
	}
}

func TestScenarios(t *testing.T) {
	carOutput := func(t *testing.T, lines []string) {
		require := require.New(t)
		require.Len(lines, 3)
		require.Equal("SMS to +12345678 : static phoneNumber set at registration time", lines[0])
		require.Regexp(`^SMS to \+12345678 : Engine \[[0-9a-f-]{36}\] ahead 100$`, lines[1])
		require.Equal("SMS to +12345678 : Car going forward...", lines[2])
	}

	cases := []struct {
		Name  string
		Check func(*testing.T, []string)
	}{
		{"named", carOutput},
		{"typed", carOutput},
		{"resolved", carOutput},
		{
			"resolution-time",
			func(t *testing.T, lines []string) {
				require.Equal(t, []string{
					"SMS to +4400 : dynamic phoneNumber set at resolution time",
				}, lines)
			},
		},
		{
			"positional",
			func(t *testing.T, lines []string) {
				require.Equal(t, []string{"I have 42"}, lines)
			},
		},
		{
			"factory",
			func(t *testing.T, lines []string) {
				require.Equal(t, []string{"I have 23", "I have 24"}, lines)
			},
		},
	}

	require.Len(t, Scenarios, len(cases))
	for i, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			require := require.New(t)

			s := Scenarios[i]
			require.Equal(tt.Name, s.Name)
			require.NotEmpty(s.Short)

			var buf bytes.Buffer
			require.NoError(s.Run(testOptions(&buf)))
			tt.Check(t, strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n"))
		})
	}
}

func TestRunResolutionTime_randomPhoneNumber(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	opts := testOptions(&buf)
	opts.PhoneNumber = ""
	require.NoError(RunResolutionTime(opts))
	require.Regexp(`^SMS to [0-9]+ : dynamic phoneNumber set at resolution time\n$`, buf.String())
}

func TestRegisterCar(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	r, err := NewRegistry(testOptions(&buf))
	require.NoError(err)
	require.NoError(RegisterCar(r, autowire.Named("phoneNumber", "+1")))
	c, err := r.Build()
	require.NoError(err)

	car := autowire.MustResolve[*Car](c)
	other := autowire.MustResolve[*Car](c)
	require.NotEqual(car.Engine().ID(), other.Engine().ID())
	_, err = uuid.Parse(car.Engine().ID())
	require.NoError(err)

	log, ok := car.Log().(*SMSLog)
	require.True(ok)
	require.Equal("+1", log.PhoneNumber())
	require.NotSame(log, car.Engine().Log())
}

func TestRegisterResolutionTimeLog_missingPhoneNumber(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	r, err := NewRegistry(testOptions(&buf))
	require.NoError(err)
	require.NoError(RegisterResolutionTimeLog(r))
	c, err := r.Build()
	require.NoError(err)

	_, err = autowire.Resolve[Log](c)
	require.ErrorIs(err, autowire.ErrUnresolvedParameter)
}

func TestRegisterDomain_reordered(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	r, err := NewRegistry(testOptions(&buf))
	require.NoError(err)
	require.NoError(r.Register(NewService))
	require.NoError(r.Register(func(value int, service *Service) *DomainObject {
		return NewDomainObject(service, value)
	}))
	c, err := r.Build()
	require.NoError(err)

	_, err = autowire.Resolve[*DomainObject](c, autowire.Positional(1, 42))
	require.ErrorIs(err, autowire.ErrParameterTypeMismatch)

	factory, err := autowire.BindFactory[DomainObjectFactory](c)
	require.NoError(err)
	obj := factory(42)
	require.Equal(42, obj.Value())
	require.NotNil(obj.Service())
	require.Equal("I have 42", obj.String())
}

func TestLogs(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLog(&buf).Write("hello")
	NewEmailLog(&buf).Write("hello")
	NewSMSLog(&buf, "+1").Write("hello")

	require.Equal(t, "hello\n"+
		"Email sent to admin@foo.com : hello\n"+
		"SMS to +1 : hello\n", buf.String())
}
