package pingsweep

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

var echoPayload = []byte("netmon-agent")

// ICMPProber sends raw ICMPv4 echo requests
type ICMPProber struct {
	id  int
	seq atomic.Uint32
}

func NewICMPProber() *ICMPProber {
	return &ICMPProber{id: os.Getpid() & 0xffff}
}

// Probe sends one echo request and waits for the matching reply
func (p *ICMPProber) Probe(ctx context.Context, host string, timeout time.Duration) error {
	ip := net.ParseIP(host).To4()
	if ip == nil {
		return fmt.Errorf("invalid IPv4 address %q", host)
	}

	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return fmt.Errorf("failed to open ICMP socket: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()
	// unblock ReadFrom on cancellation
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}

	seq := int(p.seq.Add(1) & 0xffff)
	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq,
			Data: echoPayload,
		},
	}
	msgBytes, err := msg.Marshal(nil)
	if err != nil {
		return fmt.Errorf("failed to marshal ICMP message: %w", err)
	}
	if _, err := conn.WriteTo(msgBytes, &net.IPAddr{IP: ip}); err != nil {
		return fmt.Errorf("failed to send echo to %s: %w", host, err)
	}

	reply := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(reply)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("no echo reply from %s: %w", host, err)
		}
		if matchesEcho(reply[:n], peer, ip, p.id, seq) {
			return nil
		}
	}
}

// matchesEcho reports whether packet is the echo reply for (id, seq) from ip
func matchesEcho(packet []byte, peer net.Addr, ip net.IP, id, seq int) bool {
	rm, err := icmp.ParseMessage(ipv4.ICMPTypeEchoReply.Protocol(), packet)
	if err != nil || rm.Type != ipv4.ICMPTypeEchoReply {
		return false
	}
	echo, ok := rm.Body.(*icmp.Echo)
	if !ok || echo.ID != id || echo.Seq != seq {
		return false
	}
	addr, ok := peer.(*net.IPAddr)
	return ok && addr.IP.Equal(ip)
}
