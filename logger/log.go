// Package logger wraps zap behind the small leveled api the rest of the
// module logs through.
package logger

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

var displayLevel string = "info"
var level string = displayLevel

var cfg zap.Config
var sugar *zap.SugaredLogger

type levels struct {
	Silent int
	Error  int
	Info   int
	Debug  int
}

// LogLevel exposes the numeric levels carried in configs.
func LogLevel() levels {
	return levels{Silent: 0, Error: 1, Info: 2, Debug: 3}
}

func GetLevel() string {
	return level
}

func SetDisplayLevel(lvl string) {
	displayLevel = lvl
	InitLogger(true)
	Infof("Set logger display level to %v\n", displayLevel)
}

func SetLevel(lvl string) {
	if lvl == "" {
		level = "debug"
	} else {
		level = lvl
	}
	Debugf("Set logger level to %v\n", level)
}

// SetLevelFromInt maps a numeric config level onto the routing level.
func SetLevelFromInt(lvl int) {
	switch lvl {
	case LogLevel().Silent:
		SetDisplayLevel("error")
		SetLevel("error")
	case LogLevel().Error:
		SetLevel("error")
	case LogLevel().Debug:
		SetDisplayLevel("debug")
		SetLevel("debug")
	default:
		SetLevel("info")
	}
}

func InitLogger(force bool) {
	if !force && sugar != nil {
		return
	}
	cfgString := fmt.Sprintf(`{
		"level": "%s",
		"encoding": "json",
		"outputPaths": ["stdout"],
		"errorOutputPaths": ["stderr"],
		"initialFields": {},
		"encoderConfig": {
		  "messageKey": "message",
		  "levelKey": "level",
		  "levelEncoder": "lowercase"
		}
	  }`, displayLevel)
	rawJSON := []byte(cfgString)

	if err := json.Unmarshal(rawJSON, &cfg); err != nil {
		panic(err)
	}
	rawLogger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		fmt.Printf("Error instantiating logger with config %v\n", cfgString)
		return
	}
	sugar = rawLogger.Sugar()
}

func logger() *zap.SugaredLogger {
	if sugar == nil {
		InitLogger(false)
	}
	return sugar
}

func Log(args ...interface{}) {
	if level == "error" {
		Error(args...)
	} else if level == "debug" {
		Debug(args...)
	} else {
		Info(args...)
	}
}

func Debug(args ...interface{}) {
	logger().Debug(args...)
}

func Info(args ...interface{}) {
	logger().Info(args...)
}

func Error(args ...interface{}) {
	logger().Error(args...)
}

func Logf(template string, args ...interface{}) {
	if level == "error" {
		Errorf(template, args...)
	} else if level == "debug" {
		Debugf(template, args...)
	} else {
		Infof(template, args...)
	}
}

func Debugf(template string, args ...interface{}) {
	logger().Debugf(template, args...)
}

func Infof(template string, args ...interface{}) {
	logger().Infof(template, args...)
}

func Errorf(template string, args ...interface{}) {
	logger().Errorf(template, args...)
}
