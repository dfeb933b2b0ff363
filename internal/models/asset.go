package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// BitLockerVolume is one encrypted volume reported for an asset.
type BitLockerVolume struct {
	MountPoint           string     `json:"mount_point"`
	ProtectionStatus     FlexString `json:"protection_status"`
	EncryptionMethod     string     `json:"encryption_method"`
	VolumeStatus         string     `json:"volume_status"`
	EncryptionPercentage float64    `json:"encryption_percentage"`
	KeyProtectors        []string   `json:"key_protectors"`
}

type BitLockerReport struct {
	AssetID   string            `json:"asset_id"`
	AssetName string            `json:"asset_name"`
	Volumes   []BitLockerVolume `json:"volumes"`
}

// FlexString accepts a JSON string, number or bool and keeps its text.
// Agents report protection status either as "On"/"Off" or as the WMI code.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	*f = FlexString(strconv.FormatBool(b))
	return nil
}
