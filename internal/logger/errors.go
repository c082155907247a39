package logger

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrAppNameIsEmpty is returned if Config.AppName was not defined.
	ErrAppNameIsEmpty = errors.New("config log.appname can not be empty")

	// ErrServiceNameIsEmpty is returned if Config.ServiceName was not defined.
	ErrServiceNameIsEmpty = errors.New("config log.servicename can not be empty")
)

// ErrorHandler implements a custom error handler.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "zerolog: could not write event: %v\n", err)
}
