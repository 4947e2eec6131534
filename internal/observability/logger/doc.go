// Package logger expone un logger Zap singleton con scoping por contexto.
//
// Inicialización (una vez, en el comando serve):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "usercards"})
//	defer logger.Sync()
//
// En controllers/services:
//
//	log := logger.From(ctx)
//	log.Info("card updated", logger.CardID(id), logger.UserID(ownerID))
//
// Los emails y números de tarjeta nunca se loguean en claro: Email y CardNumber
// aplican la máscara de internal/util antes de crear el campo.
package logger
