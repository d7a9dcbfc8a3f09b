// Package diag provides a diagnostic IQ-visualization sink: a small TCP
// server streaming raw complex64 samples to any connected scope-style
// client, advertised over mDNS so a laptop on the same network can find
// it without a configured address.
package diag

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"sync"

	"github.com/brutella/dnssd"
	"github.com/charmbracelet/log"
)

// TCPScope accepts TCP connections and fans out IQ sample blocks pushed
// via Push to every connected client, dropping slow clients rather than
// blocking the PHY thread.
type TCPScope struct {
	log *log.Logger

	mu      sync.Mutex
	clients map[net.Conn]chan []complex64

	ln        net.Listener
	responder dnssd.Responder
	handle    dnssd.ServiceHandle
	stopOnce  sync.Once
}

// NewTCPScope starts listening on addr (":0" picks a free port) and
// advertises the service as "_dectnrp-iqscope._tcp" over mDNS so a
// viewer can discover it without a configured host:port.
func NewTCPScope(ctx context.Context, addr, instanceName string, logger *log.Logger) (*TCPScope, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("diag: listen: %w", err)
	}

	port := ln.Addr().(*net.TCPAddr).Port

	cfg := dnssd.Config{
		Name: instanceName,
		Type: "_dectnrp-iqscope._tcp",
		Port: port,
	}
	svc, err := dnssd.NewService(cfg)
	if err != nil {
		ln.Close()
		return nil, fmt.Errorf("diag: dnssd service: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		ln.Close()
		return nil, fmt.Errorf("diag: dnssd responder: %w", err)
	}
	handle, err := responder.Add(svc)
	if err != nil {
		ln.Close()
		return nil, fmt.Errorf("diag: dnssd add: %w", err)
	}

	go func() {
		_ = responder.Respond(ctx)
	}()

	t := &TCPScope{
		log:       logger,
		clients:   make(map[net.Conn]chan []complex64),
		ln:        ln,
		responder: responder,
		handle:    handle,
	}
	go t.acceptLoop()
	return t, nil
}

func (t *TCPScope) acceptLoop() {
	for {
		conn, err := t.ln.Accept()
		if err != nil {
			return
		}
		ch := make(chan []complex64, 8)
		t.mu.Lock()
		t.clients[conn] = ch
		t.mu.Unlock()

		go t.serveClient(conn, ch)
	}
}

func (t *TCPScope) serveClient(conn net.Conn, ch chan []complex64) {
	defer func() {
		t.mu.Lock()
		delete(t.clients, conn)
		t.mu.Unlock()
		conn.Close()
	}()

	hdr := make([]byte, 4)
	for block := range ch {
		binary.BigEndian.PutUint32(hdr, uint32(len(block)))
		if _, err := conn.Write(hdr); err != nil {
			return
		}
		buf := make([]byte, len(block)*8)
		for i, s := range block {
			binary.BigEndian.PutUint32(buf[i*8:], math.Float32bits(real(s)))
			binary.BigEndian.PutUint32(buf[i*8+4:], math.Float32bits(imag(s)))
		}
		if _, err := conn.Write(buf); err != nil {
			return
		}
	}
}

// Push fans block out to every connected client, dropping it for clients
// whose channel is currently full rather than blocking the caller (this
// is a diagnostic sink, not a reliable stream).
func (t *TCPScope) Push(block []complex64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.clients {
		select {
		case ch <- block:
		default:
			if t.log != nil {
				t.log.Warn("tcpscope: dropping block for slow client")
			}
		}
	}
}

// Close stops accepting connections and withdraws the mDNS advertisement.
func (t *TCPScope) Close() error {
	var err error
	t.stopOnce.Do(func() {
		t.responder.Remove(t.handle)
		err = t.ln.Close()
	})
	return err
}
