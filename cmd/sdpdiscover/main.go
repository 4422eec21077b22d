// Command sdpdiscover runs an SDP discovery against a remote Bluetooth
// device over either a raw L2CAP socket or a serial-attached
// controller, and prints the resulting service records.
package main

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/corvid-labs/btsdp"
	"github.com/corvid-labs/btsdp/client"
	"github.com/corvid-labs/btsdp/l2cap"
	"github.com/corvid-labs/btsdp/logging"
	"github.com/corvid-labs/btsdp/profile"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	app := cli.NewApp()
	app.Name = "sdpdiscover"
	app.Usage = "discover SDP service records on a remote Bluetooth device"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "addr", Usage: "remote device address, as 6 colon-separated hex bytes"},
		cli.StringFlag{Name: "profile", Value: profile.OBEXObjectPush.Name, Usage: "canned profile to search for"},
		cli.StringFlag{Name: "profile-file", Usage: "path to a JSON profile, overrides --profile"},
		cli.StringFlag{Name: "serial", Usage: "serial port path; when set, dial over UART instead of an L2CAP socket"},
		cli.StringFlag{Name: "format", Value: "text", Usage: "output format: text or json"},
		cli.BoolFlag{Name: "verbose", Usage: "log at debug level"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log := newLogger(c.Bool("verbose"))

	addr, err := btsdp.ParseAddrString(c.String("addr"))
	if err != nil {
		return errors.Wrap(err, "parse --addr")
	}

	p, err := resolveProfile(c)
	if err != nil {
		return err
	}

	ch, err := dial(c, addr)
	if err != nil {
		return err
	}
	defer ch.Close()

	db, status := client.Discover(ch, client.DiscoverRequest{
		UUIDs:      p.UUIDs,
		AttrIDs:    p.AttrIDs,
		AttrSearch: p.AttrSearch,
	}, log)

	if status != btsdp.StatusSuccess && status != btsdp.StatusDBFull {
		return errors.Errorf("discovery ended with status %s", status)
	}

	return printRecords(c.String("format"), db)
}

func resolveProfile(c *cli.Context) (profile.Profile, error) {
	if path := c.String("profile-file"); path != "" {
		return profile.Load(path)
	}
	p, ok := profile.Lookup(c.String("profile"))
	if !ok {
		return profile.Profile{}, errors.Errorf("unknown profile %q", c.String("profile"))
	}
	return p, nil
}

func dial(c *cli.Context, addr btsdp.Addr) (btsdp.Channel, error) {
	if path := c.String("serial"); path != "" {
		return l2cap.NewSerialChannel(l2cap.DefaultSerialOptions(path), addr)
	}
	return l2cap.NewSocketChannel(addr)
}

func newLogger(verbose bool) btsdp.Logger {
	l := logrus.New()
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return logging.NewLogrusLogger(l)
}

func printRecords(format string, db *client.DB) error {
	recs := db.Records()
	if format == "json" {
		return printJSON(recs)
	}
	for i, r := range recs {
		fmt.Printf("record %d (remote %s):\n", i, r.RemoteAddr)
		for _, a := range r.Attrs {
			printAttr(a, 1)
		}
	}
	return nil
}

func printAttr(a *client.AttrView, indent int) {
	prefix := ""
	for i := 0; i < indent; i++ {
		prefix += "  "
	}
	fmt.Printf("%sattr 0x%04x (%s): %v\n", prefix, a.AttrID, a.Type, attrValue(a))
	for _, child := range a.Children {
		printAttr(child, indent+1)
	}
}

// attrValue picks out whichever field holds an attribute's scalar
// payload; containers (Seq/Alt) carry none, only Children.
func attrValue(a *client.AttrView) interface{} {
	switch a.Type {
	case client.TypeUint, client.TypeInt:
		switch {
		case a.Bytes != nil:
			return a.Bytes
		case a.U32 != 0:
			return a.U32
		case a.U16 != 0:
			return a.U16
		default:
			return a.U8
		}
	case client.TypeUUID:
		if a.Bytes != nil {
			return btsdp.UUID(a.Bytes)
		}
		if a.U16 != 0 {
			return btsdp.UUID16(a.U16)
		}
		return btsdp.UUID32(a.U32)
	case client.TypeBool:
		return a.U8 != 0
	case client.TypeText, client.TypeURL:
		return string(a.Bytes)
	default:
		return nil
	}
}

func printJSON(recs []*client.RecView) error {
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode records")
	}
	fmt.Println(string(b))
	return nil
}
