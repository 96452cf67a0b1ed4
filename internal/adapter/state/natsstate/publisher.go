// Package natsstate exports replay state signals on NATS subjects so a host
// process can mirror them.
package natsstate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	nats "github.com/nats-io/nats.go"
)

const DefaultSubjectPrefix = "replay.state"

type conn interface {
	Publish(subj string, data []byte) error
}

type Publisher struct {
	conn   conn
	prefix string
}

func New(c conn, prefix string) *Publisher {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{conn: c, prefix: prefix}
}

// Connect dials url and returns a publisher plus a close func that drains the
// connection.
func Connect(url, prefix string) (*Publisher, func(), error) {
	nc, err := nats.Connect(url, nats.Name("sessionreplay"))
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}
	return New(nc, prefix), func() { _ = nc.Drain() }, nil
}

func (p *Publisher) SetFetchLoading(loading bool) {
	p.publish("loading.fetch", map[string]any{"loading": loading})
}

func (p *Publisher) SetPlaybackLoading(loading bool) {
	p.publish("loading.playback", map[string]any{"loading": loading})
}

func (p *Publisher) SetWorkspace(dir string) {
	p.publish("workspace", map[string]any{"workspace_dir": dir})
}

func (p *Publisher) NotifyFailure(message string) {
	p.publish("notification", map[string]any{"level": "error", "message": message})
}

func (p *Publisher) subject(name string) string {
	return p.prefix + "." + name
}

func (p *Publisher) publish(name string, body map[string]any) {
	data, err := json.Marshal(body)
	if err != nil {
		hlog.Warnf("nats state encode %s: %v", name, err)
		return
	}
	if err := p.conn.Publish(p.subject(name), data); err != nil {
		hlog.Warnf("nats state publish %s: %v", p.subject(name), err)
	}
}
