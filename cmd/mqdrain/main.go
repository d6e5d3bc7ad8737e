// mqdrain simulates one invocation of the queue-drain action locally, so the
// behaviour can be checked against a real queue manager without deploying to
// the functions runtime. Connection parameters come from a configuration.json
// file, with MQDRAIN_-prefixed environment variables taking precedence.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/illmade-knight/go-queue-drain/pkg/action"
)

func main() {
	configFile := flag.String("config", "configuration.json", "path to the parameter file")
	numTestMessages := flag.Int("test-messages", 0, "number of synthetic test messages to enqueue before draining")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	args, err := loadParams(*configFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load parameters.")
	}
	if *numTestMessages > 0 {
		args[action.ParamNumTestMessages] = *numTestMessages
	}

	logger.Info().Str("config", *configFile).Msg("Simulating execution of action.")

	result := action.NewAction(nil, nil, logger).Invoke(context.Background(), args)

	out, err := json.Marshal(result)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to encode result.")
	}
	fmt.Println(string(out))

	if _, failed := result[action.ResultError]; failed {
		os.Exit(1)
	}
}

// loadParams reads the parameter file and applies environment overrides,
// returning the same argument shape the functions runtime would pass.
func loadParams(path string) (map[string]interface{}, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetEnvPrefix("MQDRAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read parameter file: %w", err)
	}

	// Viper lowercases keys, so fetch each recognised parameter under its
	// canonical name. Only parameters present in the file (or environment)
	// make it into the argument map; the action enforces which are required.
	args := make(map[string]interface{})
	for _, name := range []string{
		action.ParamQueueName,
		action.ParamUsername,
		action.ParamPassword,
		action.ParamQmgrChannelName,
		action.ParamQmgrName,
		action.ParamQmgrHostName,
	} {
		if v.IsSet(name) {
			args[name] = v.GetString(name)
		}
	}
	if v.IsSet(action.ParamQmgrPort) {
		args[action.ParamQmgrPort] = v.GetInt(action.ParamQmgrPort)
	}
	if v.IsSet(action.ParamNumTestMessages) {
		args[action.ParamNumTestMessages] = v.GetInt(action.ParamNumTestMessages)
	}
	return args, nil
}
