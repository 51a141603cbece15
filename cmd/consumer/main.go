package main

import (
	"StreamHub/internal/config"
	"StreamHub/internal/service"
	"StreamHub/internal/storage"
	"StreamHub/pkg/logger"
	"StreamHub/pkg/rabbitmq"
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/streadway/amqp"
)

// 消费者进程：连接rabbitMQ和对象存储，把不再被引用的旧文件删掉
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	logger.InitLogger(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := storage.NewS3Storage(ctx, storage.Options{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	cancel()
	if err != nil {
		logger.Log.Fatalf("消费者无法初始化对象存储: %v", err)
	}

	// 连接RabbitMQ
	rabbitMQConn, err := rabbitmq.InitRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Log.Fatalf("消费者无法连接到RabbitMQ: %v", err)
	}
	defer rabbitMQConn.Close()
	if err := rabbitmq.DeclareQueues(rabbitMQConn, service.QueueAssetCleanup); err != nil {
		logger.Log.Fatalf("声明队列失败: %v", err)
	}

	consumeAssetCleanup(rabbitMQConn, store)
}

// 文件清理消费者：1、通过mq的TCP连接创建channel 2、通过ch注册消费者 3、持续读取清理消息 4、删除对象，按结果决定ack还是重试
func consumeAssetCleanup(conn *amqp.Connection, store service.AssetStore) {
	ch, err := conn.Channel()
	if err != nil {
		logger.Log.Fatalf("无法打开Channel: %v", err)
	}
	defer ch.Close()

	// 每次最多拿10条没确认的消息，避免一个消费者把队列全吞掉
	if err := ch.Qos(10, 0, false); err != nil {
		logger.Log.Fatalf("设置Qos失败: %v", err)
	}

	msgs, err := ch.Consume(
		service.QueueAssetCleanup, // queue
		"",                        // consumer
		false,                     // auto-ack: 手动确认，删除成功才ack
		false,                     // exclusive
		false,                     // no-local
		false,                     // no-wait
		nil,                       // args
	)
	if err != nil {
		logger.Log.Fatalf("无法注册清理消费者: %v", err)
	}
	// 创建一个没有任何缓冲的bool类型通道
	forever := make(chan bool)

	go func() {
		// msgs不是切片，而是通道channel，如果通道为空不会结束循环，而会“阻塞”
		for d := range msgs {
			handleDelivery(d, store)
		}
	}()
	logger.Log.Info(" [*] 等待文件清理消息中. 按 CTRL+C 退出")
	// 尝试从forever通道里接收一个值，但没有发送者，这会阻止main函数退出
	<-forever
}

// outcome 一条消息处理完之后怎么确认
type outcome int

const (
	ack     outcome = iota // 处理成功
	drop                   // 坏消息，不重试直接丢掉
	requeue                // 暂时性错误，放回队列重试
)

func handleDelivery(d amqp.Delivery, store service.AssetStore) {
	logCtx := logger.Log.WithField("message_id", d.MessageId).WithField("redelivered", d.Redelivered)
	switch processCleanup(context.Background(), d.Body, d.Redelivered, store) {
	case ack:
		_ = d.Ack(false)
	case drop:
		// 对于无法解析的“坏消息”，应该通知mq处理失败，并直接删除
		_ = d.Nack(false, false)
	case requeue:
		logCtx.Warn("文件删除失败，消息放回队列")
		_ = d.Nack(false, true)
	}
}

// processCleanup 解析并执行一条清理消息
// 删除失败第一次放回队列，重投后还失败就丢掉并记错误日志，避免毒消息无限循环
func processCleanup(ctx context.Context, body []byte, redelivered bool, store service.AssetStore) outcome {
	logCtx := logger.Log.WithField("body", string(body))

	var msg service.AssetCleanupMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		logCtx.WithError(err).Error("消息JSON解析失败")
		return drop
	}
	if msg.Location == "" {
		logCtx.Warn("清理消息缺少文件地址")
		return drop
	}
	logCtx = logCtx.WithField("location", msg.Location).WithField("reason", msg.Reason)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := store.Delete(ctx, msg.Location); err != nil {
		if redelivered {
			logCtx.WithError(err).Error("重试后仍然删除失败，放弃这条消息")
			return drop
		}
		logCtx.WithError(err).Warn("删除文件失败，将进行重试")
		return requeue
	}
	logCtx.Info("旧文件已删除")
	return ack
}
