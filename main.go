package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"ChatRelay/data/mongoutil"
	"ChatRelay/global"
	"ChatRelay/logger"
	mid "ChatRelay/middleware"
	midsec "ChatRelay/middleware/security"
	"ChatRelay/module/image"
	"ChatRelay/module/message"
	"ChatRelay/module/user"
	"ChatRelay/service/chat"
	mgoSrv "ChatRelay/service/mgo"
	"ChatRelay/service/storage"
	"ChatRelay/tools/ids"
)

func main() {
	cfg, err := global.Load()
	if err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(1)
	}

	ids.SetNodeID(cfg.NodeID)

	// redis presence mirror is optional; without it the in-memory
	// registry simply runs alone
	if cfg.RedisAddr != "" {
		if err := storage.InitRedis(storage.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}); err != nil {
			logger.Warnf("redis unavailable, presence mirror disabled: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgoSrv.StartAsync(ctx, &mongoutil.Config{
		Uri:         cfg.MongoURL,
		Database:    cfg.MongoDatabase,
		Username:    cfg.MongoUser,
		Password:    cfg.MongoPassword,
		MaxPoolSize: 20,
	})
	waitCtx, waitCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := mgoSrv.WaitReady(waitCtx, mgoSrv.Manager()); err != nil {
		waitCancel()
		logger.Errorf("mongo not ready: %v (last: %v)", err, mgoSrv.Err())
		os.Exit(1)
	}
	waitCancel()
	logger.Infof("connected to MongoDB database=%s", cfg.MongoDatabase)

	msgStore := message.NewStore(mgoSrv.GetDB)
	userStore := user.NewStore(mgoSrv.GetDB)
	imageStore := image.NewStore(mgoSrv.GetDB)

	relay := chat.NewServer(chat.Conf{
		Heartbeat: chat.HeartbeatConf{
			PingInterval: cfg.PingInterval,
			PongWait:     cfg.PongWait,
		},
		JWT:         cfg.JWTOptions(),
		UploadDir:   cfg.UploadDir,
		PresenceTTL: cfg.PresenceTTL,
	}, msgStore)

	userHandler := user.NewHandler(userStore, relay, cfg.JWTOptions())
	msgHandler := message.NewHandler(msgStore)
	imageHandler := image.NewHandler(imageStore, cfg.ImageDir)

	authOpt := mid.RouteOpt{IsAuth: true, Auth: midsec.Options{JWT: cfg.JWTOptions()}}
	openOpt := mid.RouteOpt{}

	r := gin.New()
	r.Use(gin.Recovery(), mid.CORS(cfg.ClientOrigin))

	r.GET("/ws", relay.HandleWS)

	mid.POST(r, "/register", userHandler.Register, openOpt)
	mid.POST(r, "/login", userHandler.Login, openOpt)
	mid.POST(r, "/logout", userHandler.Logout, openOpt)
	mid.GET(r, "/profile", userHandler.Profile, authOpt)
	mid.PUT(r, "/updateName", userHandler.UpdateName, authOpt)
	mid.DELETE(r, "/deleteAccount", userHandler.DeleteAccount, authOpt)
	mid.GET(r, "/users", userHandler.Users, openOpt)

	mid.GET(r, "/messages/:id", msgHandler.History, authOpt)

	mid.POST(r, "/upload", imageHandler.Upload, authOpt)
	mid.PUT(r, "/updateImage", imageHandler.Update, authOpt)
	mid.GET(r, "/getImages", imageHandler.List, openOpt)

	// attachments and gallery files are served straight off disk
	r.Static("/uploads", cfg.UploadDir)
	r.Static("/images", cfg.ImageDir)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Infof("[HTTP] listening on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Errorf("http server failed: %v", err)
		os.Exit(1)
	}
}
