// Package casserr holds the status code space shared by every cass_* call
// and the error type carried by failed futures.
package casserr

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Source is the high byte of a Code.
type Source uint32

const (
	SourceNone        Source = 0
	SourceLib         Source = 1
	SourceServer      Source = 2
	SourceSSL         Source = 3
	SourceCompression Source = 4
)

// Code is a CassError value: source<<24 | code.
type Code uint32

func newCode(s Source, c uint32) Code { return Code(uint32(s)<<24 | c) }

const OK Code = 0

const (
	LibBadParams                  = Code(uint32(SourceLib)<<24 | 1)
	LibNoStreams                  = Code(uint32(SourceLib)<<24 | 2)
	LibUnableToInit               = Code(uint32(SourceLib)<<24 | 3)
	LibMessageEncode              = Code(uint32(SourceLib)<<24 | 4)
	LibHostResolution             = Code(uint32(SourceLib)<<24 | 5)
	LibUnexpectedResponse         = Code(uint32(SourceLib)<<24 | 6)
	LibRequestQueueFull           = Code(uint32(SourceLib)<<24 | 7)
	LibNoAvailableIOThread        = Code(uint32(SourceLib)<<24 | 8)
	LibWriteError                 = Code(uint32(SourceLib)<<24 | 9)
	LibNoHostsAvailable           = Code(uint32(SourceLib)<<24 | 10)
	LibIndexOutOfBounds           = Code(uint32(SourceLib)<<24 | 11)
	LibInvalidItemCount           = Code(uint32(SourceLib)<<24 | 12)
	LibInvalidValueType           = Code(uint32(SourceLib)<<24 | 13)
	LibRequestTimedOut            = Code(uint32(SourceLib)<<24 | 14)
	LibUnableToSetKeyspace        = Code(uint32(SourceLib)<<24 | 15)
	LibCallbackAlreadySet         = Code(uint32(SourceLib)<<24 | 16)
	LibInvalidStatementType       = Code(uint32(SourceLib)<<24 | 17)
	LibNameDoesNotExist           = Code(uint32(SourceLib)<<24 | 18)
	LibUnableToDetermineProtocol  = Code(uint32(SourceLib)<<24 | 19)
	LibNullValue                  = Code(uint32(SourceLib)<<24 | 20)
	LibNotImplemented             = Code(uint32(SourceLib)<<24 | 21)
	LibUnableToConnect            = Code(uint32(SourceLib)<<24 | 22)
	LibUnableToClose              = Code(uint32(SourceLib)<<24 | 23)
	LibNoPagingState              = Code(uint32(SourceLib)<<24 | 24)
	LibParameterUnset             = Code(uint32(SourceLib)<<24 | 25)
	LibInvalidErrorResultType     = Code(uint32(SourceLib)<<24 | 26)
	LibInvalidFutureType          = Code(uint32(SourceLib)<<24 | 27)
	LibInternalError              = Code(uint32(SourceLib)<<24 | 28)
	LibInvalidCustomType          = Code(uint32(SourceLib)<<24 | 29)
	LibInvalidData                = Code(uint32(SourceLib)<<24 | 30)
	LibNotEnoughData              = Code(uint32(SourceLib)<<24 | 31)
	LibInvalidState               = Code(uint32(SourceLib)<<24 | 32)
	LibNoCustomPayload            = Code(uint32(SourceLib)<<24 | 33)
	LibExecutionProfileInvalid    = Code(uint32(SourceLib)<<24 | 34)
	LibNoTracingID                = Code(uint32(SourceLib)<<24 | 35)
	ServerServerError             = Code(uint32(SourceServer)<<24 | 0x0000)
	ServerProtocolError           = Code(uint32(SourceServer)<<24 | 0x000A)
	ServerBadCredentials          = Code(uint32(SourceServer)<<24 | 0x0100)
	ServerUnavailable             = Code(uint32(SourceServer)<<24 | 0x1000)
	ServerOverloaded              = Code(uint32(SourceServer)<<24 | 0x1001)
	ServerIsBootstrapping         = Code(uint32(SourceServer)<<24 | 0x1002)
	ServerTruncateError           = Code(uint32(SourceServer)<<24 | 0x1003)
	ServerWriteTimeout            = Code(uint32(SourceServer)<<24 | 0x1100)
	ServerReadTimeout             = Code(uint32(SourceServer)<<24 | 0x1200)
	ServerReadFailure             = Code(uint32(SourceServer)<<24 | 0x1300)
	ServerFunctionFailure         = Code(uint32(SourceServer)<<24 | 0x1400)
	ServerWriteFailure            = Code(uint32(SourceServer)<<24 | 0x1500)
	ServerSyntaxError             = Code(uint32(SourceServer)<<24 | 0x2000)
	ServerUnauthorized            = Code(uint32(SourceServer)<<24 | 0x2100)
	ServerInvalidQuery            = Code(uint32(SourceServer)<<24 | 0x2200)
	ServerConfigError             = Code(uint32(SourceServer)<<24 | 0x2300)
	ServerAlreadyExists           = Code(uint32(SourceServer)<<24 | 0x2400)
	ServerUnprepared              = Code(uint32(SourceServer)<<24 | 0x2500)
	SSLInvalidCert                = Code(uint32(SourceSSL)<<24 | 1)
	SSLInvalidPrivateKey          = Code(uint32(SourceSSL)<<24 | 2)
	SSLNoPeerCert                 = Code(uint32(SourceSSL)<<24 | 3)
	SSLInvalidPeerCert            = Code(uint32(SourceSSL)<<24 | 4)
	SSLIdentityMismatch           = Code(uint32(SourceSSL)<<24 | 5)
	SSLProtocolError              = Code(uint32(SourceSSL)<<24 | 6)
	SSLClosed                     = Code(uint32(SourceSSL)<<24 | 7)
	CompressionUnsupportedAlgo    = Code(uint32(SourceCompression)<<24 | 1)
	CompressionDecompressionError = Code(uint32(SourceCompression)<<24 | 2)
)

var descriptions = map[Code]string{
	OK:                            "Success",
	LibBadParams:                  "Bad parameters",
	LibNoStreams:                  "No streams available",
	LibUnableToInit:               "Unable to initialize",
	LibMessageEncode:              "Unable to encode message",
	LibHostResolution:             "Unable to resolve host",
	LibUnexpectedResponse:         "Unexpected response from server",
	LibRequestQueueFull:           "The request queue is full",
	LibNoAvailableIOThread:        "No available IO threads",
	LibWriteError:                 "Write error",
	LibNoHostsAvailable:           "No hosts available",
	LibIndexOutOfBounds:           "Index out of bounds",
	LibInvalidItemCount:           "Invalid item count",
	LibInvalidValueType:           "Invalid value type",
	LibRequestTimedOut:            "Request timed out",
	LibUnableToSetKeyspace:        "Unable to set keyspace",
	LibCallbackAlreadySet:         "Callback already set",
	LibInvalidStatementType:       "Invalid statement type",
	LibNameDoesNotExist:           "No value or column for name",
	LibUnableToDetermineProtocol:  "Unable to find supported protocol version",
	LibNullValue:                  "NULL value specified",
	LibNotImplemented:             "Not implemented",
	LibUnableToConnect:            "Unable to connect",
	LibUnableToClose:              "Unable to close",
	LibNoPagingState:              "No paging state",
	LibParameterUnset:             "Parameter unset",
	LibInvalidErrorResultType:     "Invalid error result type",
	LibInvalidFutureType:          "Invalid future type",
	LibInternalError:              "Internal error",
	LibInvalidCustomType:          "Invalid custom type",
	LibInvalidData:                "Invalid data",
	LibNotEnoughData:              "Not enough data",
	LibInvalidState:               "Invalid state",
	LibNoCustomPayload:            "No custom payload",
	LibExecutionProfileInvalid:    "Invalid execution profile specified",
	LibNoTracingID:                "No tracing ID",
	ServerServerError:             "Server error",
	ServerProtocolError:           "Protocol error",
	ServerBadCredentials:          "Bad credentials",
	ServerUnavailable:             "Unavailable",
	ServerOverloaded:              "Overloaded",
	ServerIsBootstrapping:         "Is bootstrapping",
	ServerTruncateError:           "Truncate error",
	ServerWriteTimeout:            "Write timeout",
	ServerReadTimeout:             "Read timeout",
	ServerReadFailure:             "Read failure",
	ServerFunctionFailure:         "Function failure",
	ServerWriteFailure:            "Write failure",
	ServerSyntaxError:             "Syntax error",
	ServerUnauthorized:            "Unauthorized",
	ServerInvalidQuery:            "Invalid query",
	ServerConfigError:             "Configuration error",
	ServerAlreadyExists:           "Already exists",
	ServerUnprepared:              "Unprepared",
	SSLInvalidCert:                "Unable to load certificate",
	SSLInvalidPrivateKey:          "Unable to load private key",
	SSLNoPeerCert:                 "No peer certificate",
	SSLInvalidPeerCert:            "Invalid peer certificate",
	SSLIdentityMismatch:           "Certificate does not match host or IP address",
	SSLProtocolError:              "Protocol error",
	SSLClosed:                     "Connection closed",
	CompressionUnsupportedAlgo:    "Unsupported compression algorithm",
	CompressionDecompressionError: "Decompression error",
}

// ServerCode builds a server-sourced Code from a CQL protocol error code.
func ServerCode(protocolCode int) Code {
	return newCode(SourceServer, uint32(protocolCode)&0xFFFFFF)
}

// Source returns the high byte of the code.
func (c Code) Source() Source { return Source(uint32(c) >> 24) }

// Desc returns the description used by cass_error_desc.
func (c Code) Desc() string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return "Unknown error"
}

func (c Code) String() string {
	return fmt.Sprintf("%s (0x%08X)", c.Desc(), uint32(c))
}

// Error is the failure outcome of an operation.
type Error struct {
	Code    Code
	Message string

	// Result holds the server error details, if any.
	Result *ErrorResult
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.Desc()
	}
	return e.Message
}

// ErrorResult holds the details of a server error.
type ErrorResult struct {
	Code              Code
	Message           string
	Consistency       uint16
	ResponsesReceived int32
	ResponsesRequired int32
	NumFailures       int32
	DataPresent       bool
	WriteType         string
	Keyspace          string
	Table             string
	Function          string
}

// New returns an *Error with the given code.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf returns an *Error with a formatted message.
func Newf(code Code, format string, args ...interface{}) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the Code from err. Context deadlines map to
// LibRequestTimedOut, every other unclassified error to LibInternalError.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return LibRequestTimedOut
	}
	return LibInternalError
}

// MessageOf returns the message reported through cass_future_error_message.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Error()
	}
	return err.Error()
}

// ResultOf returns the server error details carried by err.
func ResultOf(err error) *ErrorResult {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Result
	}
	return nil
}

// Timeout is the outcome of a request whose client-side deadline fired.
func Timeout() error {
	return New(LibRequestTimedOut, "Request timed out")
}
