package serialize

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"reflect"
	"sync"
)

// UnsupportedKind enumerates the known categories of live runtime
// objects that can never be restored from cached state. Keeping the
// set closed means every variant's problem message comes from one
// mapping instead of ad hoc formatting in the walker.
type UnsupportedKind int

const (
	UnsupportedNone UnsupportedKind = iota
	UnsupportedProcess
	UnsupportedFileHandle
	UnsupportedNetwork
	UnsupportedContext
	UnsupportedSyncPrimitive
	UnsupportedChannel
	UnsupportedFunction
	UnsupportedOpaque // no codec claims the type
)

func (k UnsupportedKind) String() string {
	switch k {
	case UnsupportedProcess:
		return "process"
	case UnsupportedFileHandle:
		return "file handle"
	case UnsupportedNetwork:
		return "network connection"
	case UnsupportedContext:
		return "execution context"
	case UnsupportedSyncPrimitive:
		return "synchronization primitive"
	case UnsupportedChannel:
		return "channel"
	case UnsupportedFunction:
		return "function"
	case UnsupportedOpaque:
		return "opaque object"
	}
	return "supported"
}

// Classify reports whether the value belongs to one of the known
// unsupported categories.
func Classify(v any) UnsupportedKind {
	switch v.(type) {
	case *exec.Cmd, *os.Process, *os.ProcessState:
		return UnsupportedProcess
	case *os.File:
		return UnsupportedFileHandle
	case net.Conn, net.Listener:
		return UnsupportedNetwork
	case context.Context:
		return UnsupportedContext
	case *sync.Mutex, *sync.RWMutex, *sync.WaitGroup, *sync.Once, *sync.Cond:
		return UnsupportedSyncPrimitive
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Chan:
		return UnsupportedChannel
	case reflect.Func:
		return UnsupportedFunction
	}
	return UnsupportedNone
}

// UnsupportedMessage renders the single problem message used for every
// unsupported value, parameterized only by the concrete type.
func UnsupportedMessage(v any) string {
	return fmt.Sprintf("cannot serialize object of type '%s' as these are not supported with instant execution", typeName(v))
}
