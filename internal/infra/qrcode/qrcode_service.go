// Package qrcode generates device pairing QR codes.
package qrcode

import (
	"encoding/json"
	"fmt"

	"vigil/config"
	"vigil/internal/domain/service"

	"github.com/skip2/go-qrcode"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// PairingData is the QR code payload structure.
type PairingData struct {
	DeviceID string `json:"device_id"`
	Type     string `json:"type"`
}

// NewQRCodeService creates a new QR code service instance.
func NewQRCodeService(cfg *config.Config) service.QRCodeService {
	size := 256
	levelName := "M"
	if cfg.QRCode != nil {
		if cfg.QRCode.Size > 0 {
			size = cfg.QRCode.Size
		}
		if cfg.QRCode.ErrorCorrectionLevel != "" {
			levelName = cfg.QRCode.ErrorCorrectionLevel
		}
	}

	var level qrcode.RecoveryLevel
	switch levelName {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GeneratePairingQR generates a PNG QR code carrying the device identifier.
func (s *qrcodeService) GeneratePairingQR(deviceID string) ([]byte, error) {
	data := PairingData{
		DeviceID: deviceID,
		Type:     "pairing",
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal QR code data: %w", err)
	}

	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}

// ParsePairingQR parses QR code data and returns the device identifier.
func (s *qrcodeService) ParsePairingQR(qrData string) (string, error) {
	var data PairingData
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return "", fmt.Errorf("failed to unmarshal QR code data: %w", err)
	}

	if data.Type != "pairing" {
		return "", fmt.Errorf("invalid QR code type: %s", data.Type)
	}

	if data.DeviceID == "" {
		return "", fmt.Errorf("QR code carries no device identifier")
	}

	return data.DeviceID, nil
}
