package rabbitmq

import (
	"context"

	"github.com/streadway/amqp"
)

// InitRabbitMQ 初始化RabbitMQ连接
func InitRabbitMQ(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// DeclareQueues 幂等地创建持久化队列，有就不用创建
func DeclareQueues(conn *amqp.Connection, queues ...string) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	// 执行完毕后，这个临时的Channel就被关闭了
	defer ch.Close()
	for _, q := range queues {
		_, err = ch.QueueDeclare(
			q,     // name
			true,  // durable: RabbitMQ重启后队列本身不会消失
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Publisher 通过默认交换机按队列名投递持久化消息
type Publisher struct {
	conn *amqp.Connection
}

func NewPublisher(conn *amqp.Connection) *Publisher {
	return &Publisher{conn: conn}
}

// Publish 为每一条消息建立一个单独的channel，消息之间互不影响
func (p *Publisher) Publish(ctx context.Context, queue string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	return ch.Publish(
		"",    // exchange默认交换机
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // 确保消息持久化
		})
}
