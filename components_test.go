package autowire

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
)

func init() {
	hclog.L().SetLevel(hclog.Trace)
}

// Components used across the tests. They mirror the shapes of a typical
// application: an interface with several implementations, a chain of
// dependencies and a type that needs a caller-provided value.

type testLog interface {
	Write(message string)
}

type consoleLog struct {
	lines []string
}

func (l *consoleLog) Write(message string) { l.lines = append(l.lines, message) }

type smsLog struct {
	phoneNumber string
}

func newSMSLog(phoneNumber string) *smsLog {
	return &smsLog{phoneNumber: phoneNumber}
}

func (l *smsLog) Write(string) {}

var ids int64

func nextID() int64 { return atomic.AddInt64(&ids, 1) }

type engine struct {
	log testLog
	id  int64
}

func newEngine(log testLog) *engine {
	return &engine{log: log, id: nextID()}
}

type car struct {
	engine *engine
	log    testLog
}

func newCar(e *engine, log testLog) *car {
	return &car{engine: e, log: log}
}

type service struct {
	id int64
}

func newService() *service { return &service{id: nextID()} }

func (s *service) DoSomething(value int) string {
	return fmt.Sprintf("I have %d", value)
}

type domainObject struct {
	service *service
	value   int
}

func newDomainObject(s *service, value int) *domainObject {
	return &domainObject{service: s, value: value}
}

// newDomainObjectReordered is newDomainObject after someone swapped the
// parameters around.
func newDomainObjectReordered(value int, s *service) *domainObject {
	return newDomainObject(s, value)
}

func (o *domainObject) String() string { return o.service.DoSomething(o.value) }

type domainObjectFactory = func(value int) *domainObject

type repository struct {
	create domainObjectFactory
}

func newRepository(create domainObjectFactory) *repository {
	return &repository{create: create}
}

type cycleA struct{ b *cycleB }
type cycleB struct{ a *cycleA }

func newCycleA(b *cycleB) *cycleA { return &cycleA{b: b} }
func newCycleB(a *cycleA) *cycleB { return &cycleB{a: a} }

var errBroken = errors.New("broken")

type broken struct{}

func newBroken() (*broken, error) { return nil, errBroken }

// lazyA calls its injected factory while being constructed, so the cycle
// with lazyB only shows up through the factory.
type lazyA struct{ b *lazyB }
type lazyB struct{ a *lazyA }

func newLazyA(newB func() *lazyB) *lazyA { return &lazyA{b: newB()} }
func newLazyB(a *lazyA) *lazyB { return &lazyB{a: a} }

type eagerRepository struct {
	first *domainObject
}

func newEagerRepository(create domainObjectFactory) *eagerRepository {
	return &eagerRepository{first: create(1)}
}

type usesBroken struct{}

func newUsesBroken(create func() *broken) *usesBroken {
	create()
	return &usesBroken{}
}
