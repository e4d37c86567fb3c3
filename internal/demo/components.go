// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package demo contains the components wired together by the autowire-demo
// command: a few Log implementations, an Engine and Car that depend on
// them, and a DomainObject built through a factory.
package demo

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Log writes a message somewhere.
type Log interface {
	Write(message string)
}

// ConsoleLog writes messages as-is.
type ConsoleLog struct {
	out io.Writer
}

func NewConsoleLog(out io.Writer) *ConsoleLog {
	return &ConsoleLog{out: out}
}

func (l *ConsoleLog) Write(message string) {
	fmt.Fprintln(l.out, message)
}

const adminEmail = "admin@foo.com"

// EmailLog pretends to email messages to the admin.
type EmailLog struct {
	out io.Writer
}

func NewEmailLog(out io.Writer) *EmailLog {
	return &EmailLog{out: out}
}

func (l *EmailLog) Write(message string) {
	fmt.Fprintf(l.out, "Email sent to %s : %s\n", adminEmail, message)
}

// SMSLog pretends to text messages to a phone number.
type SMSLog struct {
	out         io.Writer
	phoneNumber string
}

func NewSMSLog(out io.Writer, phoneNumber string) *SMSLog {
	return &SMSLog{out: out, phoneNumber: phoneNumber}
}

// PhoneNumber returns the number messages are sent to.
func (l *SMSLog) PhoneNumber() string { return l.phoneNumber }

func (l *SMSLog) Write(message string) {
	fmt.Fprintf(l.out, "SMS to %s : %s\n", l.phoneNumber, message)
}

// Engine gets a new random id every time it is constructed.
type Engine struct {
	log Log
	id  string
}

func NewEngine(log Log) *Engine {
	return &Engine{log: log, id: uuid.New().String()}
}

func (e *Engine) ID() string { return e.id }
func (e *Engine) Log() Log   { return e.log }

func (e *Engine) Ahead(power int) {
	e.log.Write(fmt.Sprintf("Engine [%s] ahead %d", e.id, power))
}

type Car struct {
	engine *Engine
	log    Log
}

func NewCar(engine *Engine, log Log) *Car {
	return &Car{engine: engine, log: log}
}

func (c *Car) Engine() *Engine { return c.engine }
func (c *Car) Log() Log        { return c.log }

func (c *Car) Go() {
	c.engine.Ahead(100)
	c.log.Write("Car going forward...")
}

// Service is injected into every DomainObject.
type Service struct {
	id string
}

func NewService() *Service { return &Service{id: uuid.New().String()} }

func (s *Service) ID() string { return s.id }

func (s *Service) DoSomething(value int) string {
	return fmt.Sprintf("I have %d", value)
}

// DomainObject needs both an injected Service and a value only the caller
// knows.
type DomainObject struct {
	service *Service
	value   int
}

// DomainObjectFactory creates a DomainObject for a value, with the Service
// injected.
type DomainObjectFactory = func(value int) *DomainObject

func NewDomainObject(service *Service, value int) *DomainObject {
	return &DomainObject{service: service, value: value}
}

func (o *DomainObject) Service() *Service { return o.service }
func (o *DomainObject) Value() int        { return o.value }

func (o *DomainObject) String() string {
	return o.service.DoSomething(o.value)
}
