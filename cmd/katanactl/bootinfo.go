package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/katanacore/machine/hardware/boot"
)

var bootinfoOffset int64

var bootinfoCmd = &cobra.Command{
	Use:   "bootinfo <path>",
	Short: "Parse and validate a 256-byte bootstrap header from a disc/boot image",
	Args:  cobra.ExactArgs(1),
	RunE:  runBootinfo,
}

func init() {
	bootinfoCmd.Flags().Int64Var(&bootinfoOffset, "offset", 0, "byte offset of the header within the file")
}

func runBootinfo(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, boot.HeaderSize)
	if _, err := f.ReadAt(buf, bootinfoOffset); err != nil {
		return fmt.Errorf("read header at offset %d: %w", bootinfoOffset, err)
	}

	h, err := boot.Parse(buf)
	if err != nil {
		return err
	}

	fmt.Printf("hardware id:  %q\n", h.HardwareID)
	fmt.Printf("maker id:     %q\n", h.MakerID)
	fmt.Printf("crc:          %s\n", h.CRC)
	fmt.Printf("gdrom id:     %q\n", h.GDROMID)
	fmt.Printf("disc no:      %q\n", h.DiscNo)
	fmt.Printf("regions:      %q\n", h.Regions)
	fmt.Printf("peripherals:  %q\n", h.Peripherals)
	fmt.Printf("product id:   %q\n", h.ProductID)
	fmt.Printf("product ver:  %q\n", h.ProductVer)
	fmt.Printf("product date: %q\n", h.ProductDate)
	fmt.Printf("boot file:    %q\n", h.BootFile)
	fmt.Printf("vendor id:    %q\n", h.VendorID)
	fmt.Printf("product name: %q\n", h.ProductName)

	if err := h.Validate(); err != nil {
		return fmt.Errorf("header invalid: %w", err)
	}
	fmt.Println("header valid")
	return nil
}
