package autowire

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
)

func newConsoleLog() *consoleLog { return &consoleLog{} }

func TestRegistryRegister(t *testing.T) {
	cases := []struct {
		Name string
		Ctor interface{}
		Opts []RegisterOption
		Err  string
		Is   error
	}{
		{
			"constructor",
			newCar,
			nil,
			"",
			nil,
		},

		{
			"as interface",
			newSMSLog,
			[]RegisterOption{AsType[testLog](), As(TypeOf[*smsLog]())},
			"",
			nil,
		},

		{
			"not a function",
			"nope",
			nil,
			"should be a function",
			nil,
		},

		{
			"not assignable to service type",
			newEngine,
			[]RegisterOption{AsType[testLog]()},
			"not assignable to service type",
			nil,
		},

		{
			"nil service type",
			newEngine,
			[]RegisterOption{As(nil)},
			"service type can't be nil",
			nil,
		},

		{
			"wrong number of names",
			newDomainObject,
			[]RegisterOption{ParamNames("service")},
			"got 1 names but the constructor has 2 parameters",
			nil,
		},

		{
			"named parameter with wrong type",
			newDomainObject,
			[]RegisterOption{ParamNames("service", "value"), WithParameter(Named("value", "42"))},
			"",
			ErrParameterTypeMismatch,
		},

		{
			"positional parameter out of range",
			newDomainObject,
			[]RegisterOption{WithParameter(Positional(5, 42))},
			"",
			ErrPositionOutOfRange,
		},

		{
			"positional parameter with wrong type",
			newDomainObject,
			[]RegisterOption{WithParameter(Positional(0, 42))},
			"",
			ErrParameterTypeMismatch,
		},

		{
			"resolved parameter without a match function",
			newDomainObject,
			[]RegisterOption{WithParameter(Resolved(nil, func(Param, *Context) interface{} { return 1 }))},
			"needs both a match and a value function",
			nil,
		},

		{
			"resolved parameter without a value function",
			newDomainObject,
			[]RegisterOption{WithParameter(Resolved(func(Param, *Context) bool { return true }, nil))},
			"needs both a match and a value function",
			nil,
		},

		{
			"nil typed parameter",
			newDomainObject,
			[]RegisterOption{WithParameter(Typed(nil))},
			"typed parameter can't be nil",
			nil,
		},
	}

	for _, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			require := require.New(t)

			err := NewRegistry().Register(tt.Ctor, tt.Opts...)
			switch {
			case tt.Is != nil:
				require.ErrorIs(err, tt.Is)

			case tt.Err != "":
				require.Error(err)
				require.Contains(err.Error(), tt.Err)

			default:
				require.NoError(err)
			}
		})
	}
}

func TestRegistryRegisterFactory(t *testing.T) {
	require := require.New(t)

	r := NewRegistry()
	require.Error(r.RegisterFactory(nil, func(*Context, Parameters) (interface{}, error) {
		return nil, nil
	}))
	require.Error(r.RegisterFactory(TypeOf[testLog](), nil))
}

func TestRegistryBuild_registerAfterBuild(t *testing.T) {
	require := require.New(t)

	r := NewRegistry()
	require.NoError(r.Register(newService))
	_, err := r.Build()
	require.NoError(err)

	require.ErrorIs(r.Register(newConsoleLog), ErrRegistryBuilt)
	require.ErrorIs(ProvideFactory(r, func(*Context, Parameters) (testLog, error) {
		return newConsoleLog(), nil
	}), ErrRegistryBuilt)
}

func TestRegistryBuild_twice(t *testing.T) {
	require := require.New(t)

	r := NewRegistry()
	require.NoError(r.Register(newService))

	c1, err := r.Build()
	require.NoError(err)
	c2, err := r.Build()
	require.NoError(err)
	require.NotSame(c1, c2)

	s1, err := Resolve[*service](c1)
	require.NoError(err)
	s2, err := Resolve[*service](c2)
	require.NoError(err)
	require.NotEqual(s1.id, s2.id)
}

func TestRegistryBuild_duplicates(t *testing.T) {
	register := func(r *Registry) {
		require.NoError(t, r.Register(newSMSLog, AsType[testLog](), WithParameter(Typed("+1"))))
		require.NoError(t, r.Register(newConsoleLog, AsType[testLog]()))
	}

	t.Run("reject", func(t *testing.T) {
		require := require.New(t)

		r := NewRegistry()
		register(r)
		_, err := r.Build()
		require.ErrorIs(err, ErrAmbiguousRegistration)
		require.Contains(err.Error(), "2 constructor registrations")
	})

	t.Run("last wins", func(t *testing.T) {
		require := require.New(t)

		r := NewRegistry(WithDuplicatePolicy(DuplicateLastWins))
		register(r)
		c, err := r.Build()
		require.NoError(err)

		log, err := Resolve[testLog](c)
		require.NoError(err)
		require.IsType(&consoleLog{}, log)
	})

	t.Run("factory wins over constructors", func(t *testing.T) {
		require := require.New(t)

		r := NewRegistry()
		register(r)
		require.NoError(ProvideFactory(r, func(*Context, Parameters) (testLog, error) {
			return newSMSLog("factory"), nil
		}))
		c, err := r.Build()
		require.NoError(err)

		log, err := Resolve[testLog](c)
		require.NoError(err)
		require.Equal("factory", phoneOf(t, log))
	})

	t.Run("last factory wins", func(t *testing.T) {
		require := require.New(t)

		r := NewRegistry()
		for _, phone := range []string{"first", "second"} {
			require.NoError(ProvideFactory(r, func(*Context, Parameters) (testLog, error) {
				return newSMSLog(phone), nil
			}))
		}
		c, err := r.Build()
		require.NoError(err)

		log, err := Resolve[testLog](c)
		require.NoError(err)
		require.Equal("second", phoneOf(t, log))
	})
}

func TestRegistryBuild_validation(t *testing.T) {
	cases := []struct {
		Name   string
		Ctors  []interface{}
		Opts   []RegisterOption
		Errors int
	}{
		{
			"all dependencies registered",
			[]interface{}{newEngine, newCar, func(phone string) testLog { return newSMSLog(phone) }},
			nil,
			0,
		},

		{
			"missing interface",
			[]interface{}{newEngine, newCar},
			nil,
			2,
		},

		{
			"missing pointer",
			[]interface{}{newDomainObject},
			nil,
			1,
		},

		{
			"primitive parameters are not validated",
			[]interface{}{newService, newDomainObject},
			nil,
			0,
		},

		{
			"factory function parameter",
			[]interface{}{newService, newDomainObject, newRepository},
			nil,
			0,
		},

		{
			"factory function parameter for a missing service",
			[]interface{}{newRepository},
			nil,
			1,
		},

		{
			"covered by a registration-time parameter",
			[]interface{}{newEngine},
			[]RegisterOption{WithParameter(TypedAs(TypeOf[testLog](), newConsoleLog()))},
			0,
		},
	}

	for _, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			require := require.New(t)

			r := NewRegistry()
			for _, ctor := range tt.Ctors {
				require.NoError(r.Register(ctor, tt.Opts...))
			}

			c, err := r.Build()
			if tt.Errors == 0 {
				require.NoError(err)
				require.NotNil(c)
				return
			}

			require.Nil(c)
			require.ErrorIs(err, ErrUnresolvedParameter)

			var merr *multierror.Error
			require.True(errors.As(err, &merr))
			require.Len(merr.Errors, tt.Errors)
		})
	}
}

func TestRegistryBuild_logging(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{
		Output: &buf,
		Level:  hclog.Debug,
	})

	r := NewRegistry(WithLogger(logger))
	require.NoError(r.Register(newCycleA))
	require.NoError(r.Register(newCycleB))
	_, err := r.Build()
	require.NoError(err)

	out := buf.String()
	require.Contains(out, "autowire: dependency cycle")
	require.Contains(out, "autowire: container built")
	require.NotContains(out, "[TRACE]")
}

func TestDuplicatePolicyString(t *testing.T) {
	require.Equal(t, "reject", DuplicateReject.String())
	require.Equal(t, "last-wins", DuplicateLastWins.String())
	require.Equal(t, "DuplicatePolicy(7)", DuplicatePolicy(7).String())
}

func TestRegistration(t *testing.T) {
	require := require.New(t)

	reg, err := newRegistration(newSMSLog, AsType[testLog](), ParamNames("phoneNumber"))
	require.NoError(err)
	require.False(reg.IsFactory())
	require.Equal([]reflect.Type{TypeOf[testLog]()}, reg.Services())
	require.Equal([]Param{{Name: "phoneNumber", Type: reflect.TypeOf(""), Index: 0}}, reg.Params())
	require.False(reg.covers(reg.Params()[0]))

	reg, err = newRegistration(newSMSLog, ParamNames("phoneNumber"), WithParameter(Named("PhoneNumber", "+1")))
	require.NoError(err)
	require.False(reg.covers(reg.Params()[0]))

	reg, err = newRegistration(newSMSLog, ParamNames("phoneNumber"), WithParameter(Named("phoneNumber", "+1")))
	require.NoError(err)
	require.True(reg.covers(reg.Params()[0]))
	require.Equal([]reflect.Type{TypeOf[*smsLog]()}, reg.Services())
}
