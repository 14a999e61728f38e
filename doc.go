// Package spidump exposes a SPI NOR flash chip over a line-oriented
// serial console, so a host can identify the chip and dump arbitrary
// byte ranges for offline analysis.
//
// # References:
//
// SPI Flash
//   - [W25Q128]: W25Q128JV-DTR Winbond Serial Flash Memory (https://www.winbond.com/resource-files/W25Q128JV_DTR%20RevD%2012232024%20Plus.pdf)
//   - [JEP106]: JEDEC Standard Manufacturer's Identification Code (https://www.jedec.org/standards-documents/docs/jep-106ab)
//
// FTDI (https://ftdichip.com/document/application-notes/)
//   - [FTDI-AN_114]: Interfacing FT2232H Hi-Speed Devices To SPI Bus (https://ftdichip.com/wp-content/uploads/2020/08/AN_114_FTDI_Hi_Speed_USB_To_SPI_Example.pdf)
//   - [FTDI-AN_135]: FTDI MPSSE Basics (https://ftdichip.com/wp-content/uploads/2020/08/AN_135_MPSSE_Basics.pdf)
package spidump
