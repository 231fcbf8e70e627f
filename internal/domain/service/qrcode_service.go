package service

// QRCodeService generates pairing QR codes for sensor devices.
type QRCodeService interface {
	// GeneratePairingQR returns a PNG image encoding the device identifier
	// so a replacement phone can pair without retyping it.
	GeneratePairingQR(deviceID string) ([]byte, error)

	// ParsePairingQR extracts the device identifier from scanned QR data.
	ParsePairingQR(qrData string) (string, error)
}
