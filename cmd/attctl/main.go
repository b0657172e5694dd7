// Command attctl is a small demonstration CLI: it wires a loopback pair of
// att.Bearers against a one-attribute gatt.Database and drives a single
// Read Request across it, the way the teacher's examples/ directory wires a
// Device and runs a handful of requests against it. It carries no
// service/characteristic semantics beyond what att/gatt already expose.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/leso-kn/ble"
	"github.com/leso-kn/ble/att"
	"github.com/leso-kn/ble/gatt"
	attlog "github.com/leso-kn/ble/log"
	"github.com/leso-kn/ble/transport/loopback"
)

func main() {
	app := cli.NewApp()
	app.Name = "attctl"
	app.Usage = "exercise an att.Bearer pair over an in-process loopback link"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "log-level", Value: "info", Usage: "logrus level (debug, info, warn, error)"},
		cli.IntFlag{Name: "preferred-mtu", Value: ble.DefaultMTU, Usage: "preferred MTU recorded on the client bearer"},
		cli.DurationFlag{Name: "dial-timeout", Value: 5 * time.Second, Usage: "how long the demo waits for its one request"},
	}
	app.Action = runDemo

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDemo(c *cli.Context) error {
	level, err := logrus.ParseLevel(c.String("log-level"))
	if err != nil {
		return errors.Wrap(err, "attctl: invalid log level")
	}
	baseLogger := logrus.New()
	baseLogger.SetLevel(level)
	log := attlog.New(baseLogger)

	opts := ble.NewOptions(
		ble.WithLogger(log),
		ble.WithPreferredMTU(c.Int("preferred-mtu")),
		ble.WithDialTimeout(c.Duration("dial-timeout")),
	)

	serverConn, clientConn := loopback.NewPair("server", "client", opts.Logger)

	db := gatt.NewDatabase(ble.MinHandle, ble.MaxHandle)
	g := db.NewGrouping(ble.GATTUUID, 1, []byte{0x01})
	if g == nil {
		return errors.New("attctl: failed to place demo grouping")
	}
	nameAttr := g.AddAttribute(ble.DeviceNameUUID, gatt.AccessRequirements{Allowed: true}, gatt.AccessRequirements{})
	nameAttr.SetValue([]byte("attctl-demo"))

	if dump, err := db.DumpJSON(); err != nil {
		log.Errorf("attctl: failed to dump database: %v", err)
	} else {
		log.Debugf("attctl: database: %s", dump)
	}

	server, err := att.NewBearer(serverConn, log.ChildLogger(map[string]interface{}{"role": "server"}))
	if err != nil {
		return errors.Wrap(err, "attctl: failed to construct server bearer")
	}
	defer server.ShutDown()

	server.RegisterHandler(ble.ReadRequestCode, func(tid att.TransactionID, op ble.OpCode, payload []byte) {
		req := att.ReadRequest(append([]byte{byte(op)}, payload...))
		attr := db.FindAttribute(req.AttributeHandle())
		if attr == nil {
			server.ReplyWithError(tid, req.AttributeHandle(), ble.ErrCodeInvalidHandle)
			return
		}
		link := serverConn.LinkSecurity()
		if code := gatt.CheckAccess(attr.ReadRequirements(), link, gatt.OpRead); code != ble.NoError {
			server.ReplyWithError(tid, req.AttributeHandle(), code)
			return
		}
		value, _ := attr.StaticValue()
		buf := make([]byte, 1+len(value))
		resp := att.ReadResponse(buf)
		resp.SetAttributeOpcode()
		resp.SetAttributeValue(value)
		server.Reply(tid, resp)
	})

	client, err := att.NewBearer(clientConn, log.ChildLogger(map[string]interface{}{"role": "client"}),
		att.WithPreferredMTU(opts.PreferredMTU))
	if err != nil {
		return errors.Wrap(err, "attctl: failed to construct client bearer")
	}
	defer client.ShutDown()

	reqBuf := make([]byte, 3)
	req := att.ReadRequest(reqBuf)
	req.SetAttributeOpcode()
	req.SetAttributeHandle(nameAttr.Handle())

	done := make(chan struct{})
	client.StartTransaction(reqBuf, func(resp []byte, txErr *ble.TransactionError) {
		defer close(done)
		if txErr != nil {
			fmt.Fprintf(os.Stderr, "read failed: %v\n", txErr)
			return
		}
		fmt.Printf("read handle 0x%04x: %q\n", nameAttr.Handle(), att.ReadResponse(resp).AttributeValue())
	})

	select {
	case <-done:
	case <-time.After(opts.DialTimeout):
		return errors.New("attctl: demo request timed out")
	}
	return nil
}
