package fees

import "errors"

var (
	// ErrOverflow is returned when credit arithmetic wraps. A wrapping
	// sum means the caller fed impossible amounts; nothing is clamped.
	ErrOverflow = errors.New("fees: arithmetic overflow")
	// ErrMultiplierNotSupported is returned for multiplier bytes outside
	// the encoding table.
	ErrMultiplierNotSupported = errors.New("fees: multiplier byte not supported")
	// ErrConversion is returned when a fixed-point component is out of
	// range.
	ErrConversion = errors.New("fees: conversion out of range")
)
