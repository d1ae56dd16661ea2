// Package autoload initializes the global logger from LOG_* env vars
// as a side effect of being imported.
package autoload

import (
	configx "github.com/pattarin/BankPilot-Conversational-Banking/pkg/config"
	logx "github.com/pattarin/BankPilot-Conversational-Banking/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
