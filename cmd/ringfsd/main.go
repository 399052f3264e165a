// Command ringfsd serves a directory of file-backed ringfs partitions over
// HTTP: one partition per file, all sharing one sector geometry. Grounded
// on cmd/readup/main.go's cli.App-wrapping-a-gin-server shape.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/flashring/ringfs/flash"
	"github.com/flashring/ringfs/httpserver"
	"github.com/flashring/ringfs/registry"
	"github.com/flashring/ringfs/ringfs"
)

func mountDirectory(c *cli.Context) (*registry.Registry, error) {
	dir := c.String("dir")
	sectorSize := int32(c.Int("sector-size"))
	sectorCount := int32(c.Int("sector-count"))
	objectSize := int32(c.Int("object-size"))
	version := uint32(c.Int("version"))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	capacity := int64(sectorSize) * int64(sectorCount)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
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
		inst, err := ringfs.Init(partition, version, objectSize)
		if err != nil {
			return nil, err
		}
		if err := inst.Scan(); err != nil {
			fmt.Printf("ringfsd: %s failed to mount (%v), leaving unregistered\n", entry.Name(), err)
			continue
		}
		reg.Register(entry.Name(), inst)
	}
	return reg, nil
}

func serve(c *cli.Context) error {
	reg, err := mountDirectory(c)
	if err != nil {
		return err
	}
	fmt.Printf("ringfsd: serving %d partitions from %s on %s\n", reg.Len(), c.String("dir"), c.String("addr"))

	srv := httpserver.New(reg)
	return srv.Run(c.String("addr"))
}

func main() {
	app := cli.NewApp()
	app.Name = "ringfsd"
	app.Usage = "serve a directory of ringfs partitions over HTTP"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "dir", Usage: "directory of partition backing files"},
		cli.StringFlag{Name: "addr", Value: ":8081"},
		cli.IntFlag{Name: "sector-size", Value: 4096},
		cli.IntFlag{Name: "sector-count", Value: 16},
		cli.IntFlag{Name: "object-size", Value: 64},
		cli.IntFlag{Name: "version", Value: 1},
	}
	app.Action = serve

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
