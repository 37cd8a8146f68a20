package database

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/avasilyev/shelfserve/internal/entities"
)

var ErrKoboDeviceNotFound = errors.New("kobo device not found")

// RegisterKoboDevice creates a sync token for a user's Kobo reader.
func (d *Database) RegisterKoboDevice(userID uint, deviceName string) (*entities.KoboDevice, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	device := &entities.KoboDevice{
		UserID:     userID,
		Token:      token,
		DeviceName: deviceName,
	}
	if err := d.DB.Create(device).Error; err != nil {
		return nil, err
	}
	return device, nil
}

func (d *Database) GetKoboDeviceByToken(token string) (*entities.KoboDevice, error) {
	var device entities.KoboDevice
	err := d.DB.Where("token = ?", token).First(&device).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKoboDeviceNotFound
		}
		return nil, err
	}
	return &device, nil
}

func (d *Database) GetKoboDevicesForUser(userID uint) ([]entities.KoboDevice, error) {
	var devices []entities.KoboDevice
	err := d.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&devices).Error
	return devices, err
}

func (d *Database) TouchKoboDevice(id uint) error {
	now := time.Now()
	return d.DB.Model(&entities.KoboDevice{}).Where("id = ?", id).
		Update("last_sync_at", now).Error
}

func (d *Database) DeleteKoboDevice(id uint, userID uint) error {
	result := d.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&entities.KoboDevice{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrKoboDeviceNotFound
	}
	return nil
}
