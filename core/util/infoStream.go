package util

import (
	"fmt"

	"github.com/op/go-logging"
)

// util/InfoStream.java

/*
Debugging API for index classes such as IndexWriter and SegmentInfos.

NOTE: Enabling infostreams may cause performance degradation in some
components.
*/
type InfoStream interface {
	Message(component, format string, args ...interface{})
	IsEnabled(component string) bool
}

// InfoStream implementation that swallows every message.
type NoOutput struct{}

func (is NoOutput) Message(component, format string, args ...interface{}) {}
func (is NoOutput) IsEnabled(component string) bool                       { return false }

var NO_OUTPUT = NoOutput{}

// InfoStream implementation forwarding messages to a go-logging
// logger at debug level, prefixed with the component name.
type LoggingInfoStream struct {
	logger *logging.Logger
}

func NewLoggingInfoStream(module string) *LoggingInfoStream {
	return &LoggingInfoStream{logging.MustGetLogger(module)}
}

func (is *LoggingInfoStream) Message(component, format string, args ...interface{}) {
	is.logger.Debugf("%v: %v", component, fmt.Sprintf(format, args...))
}

func (is *LoggingInfoStream) IsEnabled(component string) bool {
	return is.logger.IsEnabledFor(logging.DEBUG)
}

var defaultInfoStream InfoStream = NO_OUTPUT

// The default InfoStream used by a newly instantiated classes.
func DefaultInfoStream() InfoStream {
	return defaultInfoStream
}

// Sets the default InfoStream used by a newly instantiated classes.
func SetDefaultInfoStream(infoStream InfoStream) {
	assert2(infoStream != nil, "Cannot set InfoStream default implementation to nil. To disable logging use NO_OUTPUT.")
	defaultInfoStream = infoStream
}
