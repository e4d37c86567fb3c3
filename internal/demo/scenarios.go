// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package demo

import (
	"fmt"
	"io"
	"math/rand"
	"reflect"
	"strconv"

	"github.com/hashicorp/go-autowire"
	"github.com/hashicorp/go-hclog"
)

// DefaultPhoneNumber is the number bound at registration time.
const DefaultPhoneNumber = "+12345678"

// Options configures a scenario run.
type Options struct {
	// Out receives everything the components write.
	Out io.Writer

	// Logger is given to the registry. Defaults to hclog.L().
	Logger hclog.Logger

	// PhoneNumber is the number given at resolution time by the
	// resolution-time scenario. A random number is used if empty.
	PhoneNumber string
}

// Scenario is a single demonstration of a way to supply parameters.
type Scenario struct {
	Name  string
	Short string
	Run   func(Options) error
}

// Scenarios lists every scenario in the order they are presented.
var Scenarios = []Scenario{
	{
		Name:  "named",
		Short: "Bind the SMS phone number by parameter name at registration time",
		Run: func(opts Options) error {
			return runCar(opts, autowire.Named("phoneNumber", DefaultPhoneNumber))
		},
	},
	{
		Name:  "typed",
		Short: "Bind the SMS phone number by parameter type at registration time",
		Run: func(opts Options) error {
			return runCar(opts, autowire.Typed(DefaultPhoneNumber))
		},
	},
	{
		Name:  "resolved",
		Short: "Bind the SMS phone number with a predicate at registration time",
		Run: func(opts Options) error {
			return runCar(opts, PhoneNumberParameter())
		},
	},
	{
		Name:  "resolution-time",
		Short: "Construct the log with a factory reading the phone number given to Resolve",
		Run:   RunResolutionTime,
	},
	{
		Name:  "positional",
		Short: "Give the DomainObject value by constructor position",
		Run:   RunPositional,
	},
	{
		Name:  "factory",
		Short: "Create DomainObjects through a bound factory function",
		Run:   RunFactory,
	},
}

// PhoneNumberParameter matches the SMSLog phone number by type and name.
func PhoneNumberParameter() autowire.Parameter {
	stringType := reflect.TypeOf("")
	return autowire.Resolved(
		func(p autowire.Param, _ *autowire.Context) bool {
			return p.Type == stringType && p.Name == "phoneNumber"
		},
		func(autowire.Param, *autowire.Context) interface{} {
			return DefaultPhoneNumber
		},
	)
}

// NewRegistry returns a registry with the writer every log writes to.
func NewRegistry(opts Options) (*autowire.Registry, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.L()
	}

	r := autowire.NewRegistry(autowire.WithLogger(logger))
	out := opts.Out
	err := autowire.ProvideFactory(r, func(*autowire.Context, autowire.Parameters) (io.Writer, error) {
		return out, nil
	})
	return r, err
}

// RegisterCar registers SMSLog as the Log, with phone attached at
// registration time, plus Engine and Car.
func RegisterCar(r *autowire.Registry, phone autowire.Parameter) error {
	if err := r.Register(NewSMSLog,
		autowire.AsType[Log](),
		autowire.ParamNames("out", "phoneNumber"),
		autowire.WithParameter(phone),
	); err != nil {
		return err
	}
	if err := r.Register(NewEngine); err != nil {
		return err
	}

	return r.Register(NewCar)
}

func runCar(opts Options, phone autowire.Parameter) error {
	r, err := NewRegistry(opts)
	if err != nil {
		return err
	}
	if err := RegisterCar(r, phone); err != nil {
		return err
	}

	c, err := r.Build()
	if err != nil {
		return err
	}

	log, err := autowire.Resolve[Log](c)
	if err != nil {
		return err
	}
	log.Write("static phoneNumber set at registration time")

	car, err := autowire.Resolve[*Car](c)
	if err != nil {
		return err
	}
	car.Go()
	return nil
}

// RegisterResolutionTimeLog registers a Log factory that reads the phone
// number from the parameters given to Resolve.
func RegisterResolutionTimeLog(r *autowire.Registry) error {
	return autowire.ProvideFactory(r, func(ctx *autowire.Context, p autowire.Parameters) (Log, error) {
		phone, err := autowire.NamedValue[string](p, "phoneNumber")
		if err != nil {
			return nil, err
		}

		out, err := autowire.Resolve[io.Writer](ctx)
		if err != nil {
			return nil, err
		}

		return NewSMSLog(out, phone), nil
	})
}

// RunResolutionTime resolves the Log with the phone number given at
// resolution time.
func RunResolutionTime(opts Options) error {
	r, err := NewRegistry(opts)
	if err != nil {
		return err
	}
	if err := RegisterResolutionTimeLog(r); err != nil {
		return err
	}

	c, err := r.Build()
	if err != nil {
		return err
	}

	phone := opts.PhoneNumber
	if phone == "" {
		phone = strconv.Itoa(rand.Int())
	}

	log, err := autowire.Resolve[Log](c, autowire.Named("phoneNumber", phone))
	if err != nil {
		return err
	}

	log.Write("dynamic phoneNumber set at resolution time")
	return nil
}

// RegisterDomain registers Service and DomainObject.
func RegisterDomain(r *autowire.Registry) error {
	if err := r.Register(NewService); err != nil {
		return err
	}

	return r.Register(NewDomainObject, autowire.ParamNames("service", "value"))
}

func buildDomain(opts Options) (*autowire.Container, error) {
	r, err := NewRegistry(opts)
	if err != nil {
		return nil, err
	}
	if err := RegisterDomain(r); err != nil {
		return nil, err
	}

	return r.Build()
}

// RunPositional resolves a DomainObject giving its value by position. This
// breaks as soon as the constructor parameters are reordered.
func RunPositional(opts Options) error {
	c, err := buildDomain(opts)
	if err != nil {
		return err
	}

	obj, err := autowire.Resolve[*DomainObject](c, autowire.Positional(1, 42))
	if err != nil {
		return err
	}

	fmt.Fprintln(opts.Out, obj)
	return nil
}

// RunFactory creates DomainObjects through a bound factory, which keeps
// working when the constructor parameters are reordered.
func RunFactory(opts Options) error {
	c, err := buildDomain(opts)
	if err != nil {
		return err
	}

	factory, err := autowire.BindFactory[DomainObjectFactory](c)
	if err != nil {
		return err
	}
	fmt.Fprintln(opts.Out, factory(23))

	// Resolving the function type binds the same kind of factory.
	resolved, err := autowire.Resolve[DomainObjectFactory](c)
	if err != nil {
		return err
	}
	fmt.Fprintln(opts.Out, resolved(24))
	return nil
}
