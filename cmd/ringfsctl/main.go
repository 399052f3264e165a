// Command ringfsctl operates a single ringfs partition backed by a plain
// file, for manual testing and inspection. Grounded on
// cmd/kanils/main.go's urfave/cli subcommand-per-verb shape, narrowed from
// cannyls's key/value verbs to ringfs's queue verbs.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/flashring/ringfs/flash"
	"github.com/flashring/ringfs/httpserver"
	"github.com/flashring/ringfs/registry"
	"github.com/flashring/ringfs/ringerr"
	"github.com/flashring/ringfs/ringfs"
)

func openInstance(c *cli.Context) (*ringfs.Instance, error) {
	path := c.GlobalString("path")
	if path == "" {
		return nil, errors.New("ringfsctl: --path is required")
	}
	sectorSize := int32(c.GlobalInt("sector-size"))
	sectorCount := int32(c.GlobalInt("sector-count"))
	objectSize := int32(c.GlobalInt("object-size"))
	version := uint32(c.GlobalInt("version"))

	capacity := int64(sectorSize) * int64(sectorCount)
	adapter, err := flash.OpenFileAdapter(path, capacity, sectorSize)
	if err != nil {
		return nil, err
	}

	partition := flash.Partition{
		SectorSize:   sectorSize,
		SectorOffset: 0,
		SectorCount:  sectorCount,
		Adapter:      adapter,
	}
	return ringfs.Init(partition, version, objectSize)
}

func formatCmd(c *cli.Context) error {
	inst, err := openInstance(c)
	if err != nil {
		return err
	}
	if err := inst.Format(); err != nil {
		return err
	}
	fmt.Printf("formatted, capacity %s records\n", humanize.Comma(int64(inst.Capacity())))
	return nil
}

func scanCmd(c *cli.Context) error {
	inst, err := openInstance(c)
	if err != nil {
		return err
	}
	if err := inst.Scan(); err != nil {
		return err
	}
	estimate := inst.CountEstimate()
	fmt.Printf("mounted, ~%s records (estimate)\n", humanize.Comma(int64(estimate)))
	return nil
}

func appendCmd(c *cli.Context) error {
	inst, err := openInstance(c)
	if err != nil {
		return err
	}
	if err := inst.Scan(); err != nil {
		return err
	}

	payload, err := decodePayload(c.String("value"))
	if err != nil {
		return err
	}
	if err := inst.Append(payload); err != nil {
		return err
	}
	fmt.Println("appended")
	return nil
}

func fetchCmd(c *cli.Context) error {
	inst, err := openInstance(c)
	if err != nil {
		return err
	}
	if err := inst.Scan(); err != nil {
		return err
	}

	buf := make([]byte, int32(c.GlobalInt("object-size")))
	if err := inst.Fetch(buf); err != nil {
		if errors.Cause(err) == ringerr.ErrEmpty {
			fmt.Println("empty")
			return nil
		}
		return err
	}
	fmt.Println(hex.EncodeToString(buf))
	return nil
}

func discardCmd(c *cli.Context) error {
	inst, err := openInstance(c)
	if err != nil {
		return err
	}
	if err := inst.Scan(); err != nil {
		return err
	}
	if err := inst.Discard(); err != nil {
		return err
	}
	fmt.Println("discarded")
	return nil
}

func discardOneCmd(c *cli.Context) error {
	inst, err := openInstance(c)
	if err != nil {
		return err
	}
	if err := inst.Scan(); err != nil {
		return err
	}
	if err := inst.DiscardOne(); err != nil {
		return err
	}
	fmt.Println("discarded one")
	return nil
}

func rewindCmd(c *cli.Context) error {
	inst, err := openInstance(c)
	if err != nil {
		return err
	}
	if err := inst.Scan(); err != nil {
		return err
	}
	inst.Rewind()
	fmt.Println("rewound")
	return nil
}

func dumpCmd(c *cli.Context) error {
	inst, err := openInstance(c)
	if err != nil {
		return err
	}
	if err := inst.Scan(); err != nil {
		return err
	}
	return inst.Dump(os.Stdout)
}

func decodePayload(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("ringfsctl: --value is required")
	}
	return hex.DecodeString(value)
}

func mountDirectory(c *cli.Context, dir string) (*registry.Registry, error) {
	sectorSize := int32(c.GlobalInt("sector-size"))
	sectorCount := int32(c.GlobalInt("sector-count"))
	objectSize := int32(c.GlobalInt("object-size"))
	version := uint32(c.GlobalInt("version"))
	capacity := int64(sectorSize) * int64(sectorCount)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		adapter, err := flash.OpenFileAdapter(dir+"/"+entry.Name(), capacity, sectorSize)
		if err != nil {
			return nil, err
		}
		partition := flash.Partition{SectorSize: sectorSize, SectorOffset: 0, SectorCount: sectorCount, Adapter: adapter}
		inst, err := ringfs.Init(partition, version, objectSize)
		if err != nil {
			return nil, err
		}
		if err := inst.Scan(); err != nil {
			fmt.Printf("ringfsctl: %s failed to mount (%v), skipping\n", entry.Name(), err)
			continue
		}
		reg.Register(entry.Name(), inst)
	}
	return reg, nil
}

func listCmd(c *cli.Context) error {
	reg, err := mountDirectory(c, c.String("dir"))
	if err != nil {
		return err
	}
	for _, name := range reg.Names() {
		inst, _ := reg.Get(name)
		exact, err := inst.CountExact()
		if err != nil {
			return err
		}
		fmt.Printf("%-30s capacity=%-8s count=%s\n", name, humanize.Comma(int64(inst.Capacity())), humanize.Comma(int64(exact)))
	}
	return nil
}

func serveCmd(c *cli.Context) error {
	reg, err := mountDirectory(c, c.String("dir"))
	if err != nil {
		return err
	}
	fmt.Printf("ringfsctl: serving %d partitions from %s on %s\n", reg.Len(), c.String("dir"), c.String("addr"))
	return httpserver.New(reg).Run(c.String("addr"))
}

func main() {
	app := cli.NewApp()
	app.Name = "ringfsctl"
	app.Usage = "inspect and operate a file-backed ringfs partition"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "path", Usage: "path to the partition's backing file"},
		cli.IntFlag{Name: "sector-size", Value: 4096},
		cli.IntFlag{Name: "sector-count", Value: 16},
		cli.IntFlag{Name: "object-size", Value: 64},
		cli.IntFlag{Name: "version", Value: 1},
	}
	app.Commands = []cli.Command{
		{Name: "format", Usage: "wipe the partition and make it a valid empty ring", Action: formatCmd},
		{Name: "scan", Usage: "mount the partition, reporting the estimated record count", Action: scanCmd},
		{Name: "append", Usage: "append --value <hex>", Flags: []cli.Flag{cli.StringFlag{Name: "value"}}, Action: appendCmd},
		{Name: "fetch", Usage: "fetch the next unread record", Action: fetchCmd},
		{Name: "discard", Usage: "acknowledge every fetched record", Action: discardCmd},
		{Name: "discard-one", Usage: "acknowledge the single oldest record", Action: discardOneCmd},
		{Name: "rewind", Usage: "reset the fetch cursor to the oldest undiscarded record", Action: rewindCmd},
		{Name: "dump", Usage: "print sector/slot status for debugging", Action: dumpCmd},
		{Name: "list", Usage: "list --dir <dir>: mount every file in dir and print its stats", Flags: []cli.Flag{cli.StringFlag{Name: "dir"}}, Action: listCmd},
		{Name: "serve", Usage: "serve --dir <dir> --addr <addr>: run ringfsd against every file in dir", Flags: []cli.Flag{cli.StringFlag{Name: "dir"}, cli.StringFlag{Name: "addr", Value: ":8081"}}, Action: serveCmd},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
