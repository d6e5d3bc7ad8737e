package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illmade-knight/go-queue-drain/pkg/action"
)

// validArgs returns a complete argument map in the shape a JSON-decoded
// invocation produces, where numbers arrive as float64.
func validArgs() map[string]interface{} {
	return map[string]interface{}{
		action.ParamQueueName:       "DEV.QUEUE.1",
		action.ParamUsername:        "app",
		action.ParamPassword:        "secret",
		action.ParamQmgrChannelName: "DEV.APP.SVRCONN",
		action.ParamQmgrName:        "QM1",
		action.ParamQmgrPort:        float64(1414),
		action.ParamQmgrHostName:    "mq.example.com",
	}
}

func TestParseParams_AllRequired(t *testing.T) {
	params, err := action.ParseParams(validArgs())

	require.NoError(t, err)
	assert.Equal(t, "DEV.QUEUE.1", params.Connection.QueueName)
	assert.Equal(t, "app", params.Connection.UserName)
	assert.Equal(t, "secret", params.Connection.Password)
	assert.Equal(t, "DEV.APP.SVRCONN", params.Connection.ChannelName)
	assert.Equal(t, "QM1", params.Connection.QueueManagerName)
	assert.Equal(t, 1414, params.Connection.Port)
	assert.Equal(t, "mq.example.com", params.Connection.HostName)
	assert.Zero(t, params.NumTestMessages, "the test-message count defaults to zero when absent")
}

func TestParseParams_MissingRequiredParameter(t *testing.T) {
	required := []string{
		action.ParamQueueName,
		action.ParamUsername,
		action.ParamPassword,
		action.ParamQmgrChannelName,
		action.ParamQmgrName,
		action.ParamQmgrPort,
		action.ParamQmgrHostName,
	}

	for _, name := range required {
		t.Run(name, func(t *testing.T) {
			args := validArgs()
			delete(args, name)

			_, err := action.ParseParams(args)

			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestParseParams_PortShapes(t *testing.T) {
	args := validArgs()
	args[action.ParamQmgrPort] = "1414"
	params, err := action.ParseParams(args)
	require.NoError(t, err)
	assert.Equal(t, 1414, params.Connection.Port)

	args[action.ParamQmgrPort] = 1414
	params, err = action.ParseParams(args)
	require.NoError(t, err)
	assert.Equal(t, 1414, params.Connection.Port)

	args[action.ParamQmgrPort] = "not a port"
	_, err = action.ParseParams(args)
	assert.Error(t, err)
}

func TestParseParams_NumTestMessages(t *testing.T) {
	args := validArgs()
	args[action.ParamNumTestMessages] = float64(5)
	params, err := action.ParseParams(args)
	require.NoError(t, err)
	assert.Equal(t, 5, params.NumTestMessages)

	args[action.ParamNumTestMessages] = float64(-1)
	_, err = action.ParseParams(args)
	assert.Error(t, err, "a negative seed count is rejected")
}

func TestParseParams_WrongType(t *testing.T) {
	args := validArgs()
	args[action.ParamQueueName] = 42

	_, err := action.ParseParams(args)

	require.Error(t, err)
	assert.Contains(t, err.Error(), action.ParamQueueName)
}
