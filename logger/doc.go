// Package logger provides structured logging for composekit using zerolog.
//
// It supports JSON and console output, level configuration, component-scoped
// loggers with structured fields, and the Facade capability the bootstrap
// sequence writes its progress to.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.ForModule("orders")
//	log.Info("orders module ready", logger.Fields("handlers", 3))
//
//	var facade logger.Facade = log
//	facade.Log("Creating shell.", logger.CategoryDebug, logger.PriorityLow)
package logger
