//go:build tinygo

package cmd

import (
	"image/color"
	"io/fs"
	"machine"
	"time"

	"tinygo.org/x/drivers/mpu6050"
	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/drivers/ws2812"

	"nifri2/emotipet/motion"
	"nifri2/emotipet/storage"
)

const (
	I2C_SDA    = machine.GP4
	I2C_SCL    = machine.GP5
	Motor_Pin  = machine.GP15
	Status_Pin = machine.GP16
)

var Touch_Pins = []machine.Pin{machine.GP10, machine.GP11, machine.GP12}

// picoBoard reads the touch pads and the IMU, and drives the motor and the
// status pixel.
type picoBoard struct {
	touch  []machine.Pin
	imu    mpu6050.Device
	motor  machine.Pin
	status ws2812.Device
}

func (b *picoBoard) Read(_ time.Duration, levels []bool) (motion.Sample, error) {
	for i, pin := range b.touch {
		if i < len(levels) {
			levels[i] = pin.Get()
		}
	}
	ax, ay, az := b.imu.ReadAcceleration()
	gx, gy, gz := b.imu.ReadRotation()
	return motion.Sample{AX: ax, AY: ay, AZ: az, GX: gx, GY: gy, GZ: gz}, nil
}

func (b *picoBoard) SetMotor(on bool) { b.motor.Set(on) }

func (b *picoBoard) SetStatus(c color.RGBA) error {
	return b.status.WriteColors([]color.RGBA{c})
}

// NewPicoBoard configures the I2C bus, display, IMU, touch pads, motor and
// status pixel of the RP2040 board. The personality record lives in the
// first erase block of the flash data area.
func NewPicoBoard(assets fs.FS, stateKey string) (Board, error) {
	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       I2C_SDA,
		SCL:       I2C_SCL,
	}); err != nil {
		return Board{}, err
	}

	display := ssd1306.NewI2C(bus)
	display.Configure(ssd1306.Config{
		Address: ssd1306.Address_128_32,
		Width:   128,
		Height:  64,
	})
	display.ClearDisplay()

	imu := mpu6050.New(bus)
	imu.Configure()
	imu.SetFullScaleAccelRange(mpu6050.AFS_RANGE_2G)
	imu.SetFullScaleGyroRange(mpu6050.FS_RANGE_250)

	for _, pin := range Touch_Pins {
		pin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	}
	Motor_Pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	Motor_Pin.Low()
	Status_Pin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 5000})

	b := &picoBoard{
		touch:  Touch_Pins,
		imu:    imu,
		motor:  Motor_Pin,
		status: ws2812.New(Status_Pin),
	}
	return Board{
		Sensors:  b,
		Screen:   display,
		Motor:    b,
		Status:   b,
		Watchdog: machine.Watchdog,
		Assets:   assets,
		KV:       storage.NewBlockKV(machine.Flash, 0, stateKey),
	}, nil
}
