package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"

	"complan-go/internal/agent"
	"complan-go/internal/api/handler"
	"complan-go/internal/api/router"
	"complan-go/internal/config"
	"complan-go/internal/interview"
	"complan-go/internal/leetcode"
	appCoreLogger "complan-go/internal/logger"
	"complan-go/internal/resume"
	"complan-go/internal/storage"
	"complan-go/internal/tracing"
	"complan-go/internal/udemy"
)

var (
	version     = "1.0.0"      //nolint:gochecknoglobals
	serviceName = "complan-go" //nolint:gochecknoglobals
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		appCoreLogger.Fatal().Err(err).Msg("加载配置失败")
	}

	initLogger(cfg)
	glog.Infof("配置加载成功, 版本: %s", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 追踪导出（可选）
	shutdownTracing, err := tracing.InitProvider(ctx, &cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化追踪失败: %v", err)
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := shutdownTracing(shutdownCtx); err != nil {
			glog.Warnf("关闭追踪导出失败: %v", err)
		}
	}()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	// LLM聊天模型
	llmTimeout := config.GetDuration(cfg.LLM.RequestTimeout, 60*time.Second)
	llmModel, err := agent.NewOpenAIChatModel(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.APIURL, llmTimeout)
	if err != nil {
		glog.Fatalf("初始化LLM聊天模型失败: %v", err)
	}
	glog.Infof("LLM聊天模型初始化成功, model: %s", cfg.LLM.Model)

	// 面试会话存储：优先Redis，不可用时回退到进程内存储
	var sessionStore interview.SessionStore
	if storageManager.Redis != nil {
		sessionTTL := config.GetDuration(cfg.Interview.SessionTTL, 2*time.Hour)
		sessionStore = storage.NewRedisSessionStore(storageManager.Redis, sessionTTL)
		glog.Info("面试会话存储使用Redis")
	} else {
		sessionStore = interview.NewInMemorySessionStore()
		glog.Warn("Redis不可用，面试会话存储回退到进程内存")
	}

	timeLimit := config.GetDuration(cfg.Interview.TimeLimit, time.Minute)
	controller := interview.NewController(
		sessionStore,
		interview.NewQuestionGenerator(llmModel),
		interview.NewAnswerScorer(llmModel),
		timeLimit,
	)
	glog.Infof("面试控制器初始化成功, 答题时限: %s", timeLimit)

	// 简历生成服务
	if storageManager.MinIO == nil {
		glog.Fatalf("MinIO不可用，无法提供简历生成服务")
	}
	leetcodeClient := leetcode.NewClient(cfg.LeetCode.BaseURL,
		time.Duration(cfg.LeetCode.TimeoutSeconds)*time.Second)
	var publisher resume.EventPublisher
	if storageManager.RabbitMQ != nil {
		publisher = storageManager.RabbitMQ
	} else {
		glog.Warn("RabbitMQ不可用，简历生成事件不会发布")
	}
	resumeService := resume.NewService(leetcodeClient, storageManager.MinIO, publisher)
	glog.Info("简历生成服务初始化成功")

	// 简历事件消费者：写入MySQL供招聘方浏览
	if storageManager.RabbitMQ != nil && storageManager.MySQL != nil {
		indexer := resume.NewIndexer(storageManager.MySQL)
		_, err := storageManager.RabbitMQ.StartConsumer(ctx,
			cfg.RabbitMQ.ResumeGeneratedQueue,
			cfg.RabbitMQ.PrefetchCount,
			indexer.HandleMessage,
		)
		if err != nil {
			glog.Fatalf("启动简历事件消费者失败: %v", err)
		}
		glog.Info("简历事件消费者已启动")
	} else {
		glog.Warn("RabbitMQ或MySQL不可用，跳过简历事件消费者")
	}

	// 课程搜索客户端
	udemyClient := udemy.NewClient(
		cfg.Udemy.BaseURL,
		cfg.Udemy.ClientID,
		cfg.Udemy.ClientSecret,
		cfg.Udemy.Fields,
		cfg.Udemy.PageSize,
		time.Duration(cfg.Udemy.TimeoutSeconds)*time.Second,
	)

	interviewHandler := handler.NewInterviewHandler(controller)
	resumeHandler := handler.NewResumeHandler(resumeService)
	courseHandler := handler.NewCourseHandler(udemyClient)
	recruiterHandler := handler.NewRecruiterHandler(storageManager.MySQL)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, interviewHandler, resumeHandler, courseHandler, recruiterHandler, cfg.Server.RecruiterAPIKey)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 初始化zerolog并接管Hertz的hlog
func initLogger(cfg *config.Config) {
	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	hertzCompatibleLogger := hertzadapter.From(appCoreLogger.Logger)
	glog.SetLogger(hertzCompatibleLogger)
}
