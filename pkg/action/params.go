package action

import (
	"fmt"
	"strconv"

	"github.com/illmade-knight/go-queue-drain/pkg/mqsession"
)

// Parameter names recognised in the invocation arguments. All connection
// parameters are required; ParamNumTestMessages is optional and test-only.
const (
	ParamQueueName       = "queueName"
	ParamPassword        = "password"
	ParamUsername        = "username"
	ParamQmgrChannelName = "qmgrChannelName"
	ParamQmgrName        = "qmgrName"
	ParamQmgrPort        = "qmgrPort"
	ParamQmgrHostName    = "qmgrHostName"

	// ParamNumTestMessages asks the action to pre-populate the queue with
	// synthetic messages for itself to read. In reality the messages would be
	// placed on the queue by a separate application.
	ParamNumTestMessages = "numTestMessages"
)

// Params is the validated configuration for one invocation.
type Params struct {
	Connection mqsession.Config

	// NumTestMessages is the number of synthetic messages to enqueue before
	// draining. Zero when the parameter is absent.
	NumTestMessages int
}

// ParseParams validates the structured key-value input handed over by the
// invocation harness. It fails on the first missing required parameter,
// before any queue interaction takes place.
func ParseParams(args map[string]interface{}) (*Params, error) {
	p := &Params{}
	var err error

	if p.Connection.QueueName, err = stringParam(args, ParamQueueName); err != nil {
		return nil, err
	}
	if p.Connection.UserName, err = stringParam(args, ParamUsername); err != nil {
		return nil, err
	}
	if p.Connection.Password, err = stringParam(args, ParamPassword); err != nil {
		return nil, err
	}
	if p.Connection.ChannelName, err = stringParam(args, ParamQmgrChannelName); err != nil {
		return nil, err
	}
	if p.Connection.QueueManagerName, err = stringParam(args, ParamQmgrName); err != nil {
		return nil, err
	}
	if p.Connection.Port, err = intParam(args, ParamQmgrPort); err != nil {
		return nil, err
	}
	if p.Connection.HostName, err = stringParam(args, ParamQmgrHostName); err != nil {
		return nil, err
	}

	if _, present := args[ParamNumTestMessages]; present {
		if p.NumTestMessages, err = intParam(args, ParamNumTestMessages); err != nil {
			return nil, err
		}
		if p.NumTestMessages < 0 {
			return nil, fmt.Errorf("parameter %q cannot be negative", ParamNumTestMessages)
		}
	}

	return p, nil
}

func stringParam(args map[string]interface{}, name string) (string, error) {
	raw, present := args[name]
	if !present {
		return "", fmt.Errorf("parameter %q was not found", name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q is not a string", name)
	}
	return s, nil
}

// intParam accepts the shapes a JSON-decoded argument map can carry a number
// in: float64 from the JSON decoder, a native int, or a digit string.
func intParam(args map[string]interface{}, name string) (int, error) {
	raw, present := args[name]
	if !present {
		return 0, fmt.Errorf("parameter %q was not found", name)
	}
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("parameter %q is not an integer: %w", name, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("parameter %q is not an integer", name)
	}
}
