package etcd

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Client etcd客户端，用于服务注册与发现
type Client struct {
	cli     *clientv3.Client
	timeout time.Duration
}

// NewClient 创建etcd客户端
func NewClient(endpoints []string) (*Client, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	return &Client{
		cli:     cli,
		timeout: 5 * time.Second,
	}, nil
}

// Register 注册服务并保持租约心跳
// key形如 <prefix>/<serviceName>/<addr>，进程退出后TTL到期自动摘除
func (c *Client) Register(prefix, serviceName, addr string, ttl int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	lease, err := c.cli.Grant(ctx, ttl)
	if err != nil {
		return fmt.Errorf("failed to grant lease: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s", prefix, serviceName, addr)
	if _, err := c.cli.Put(ctx, key, addr, clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("failed to register service %s: %w", key, err)
	}

	keepAlive, err := c.cli.KeepAlive(context.Background(), lease.ID)
	if err != nil {
		return fmt.Errorf("failed to keep lease alive: %w", err)
	}

	go func() {
		for resp := range keepAlive {
			logrus.Debugf("[Etcd] lease keepalive: %d", resp.ID)
		}
		logrus.Warnf("[Etcd] keepalive channel closed for %s", key)
	}()

	logrus.Infof("[Etcd] service registered: %s", key)
	return nil
}

// Discover 获取指定服务名下的所有实例地址
func (c *Client) Discover(prefix, serviceName string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	key := fmt.Sprintf("%s/%s/", prefix, serviceName)
	resp, err := c.cli.Get(ctx, key, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to discover service %s: %w", serviceName, err)
	}

	addrs := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		addrs = append(addrs, string(kv.Value))
	}
	return addrs, nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	return c.cli.Close()
}
