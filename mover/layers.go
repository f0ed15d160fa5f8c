package mover

// LayerMask is a bit set of collision layers, bit i standing for layer i.
type LayerMask uint32

const (
	// MaxLayers is the number of addressable collision layers.
	MaxLayers = 32

	// IgnoreRaycastLayer is never hit by the ground sensor.
	IgnoreRaycastLayer = 2

	AllLayers LayerMask = ^LayerMask(0)
)

// LayerMatrix reports which layer pairs never collide.
type LayerMatrix interface {
	IgnoresLayerCollision(a, b int) bool
}

func (m LayerMask) Has(layer int) bool {
	if layer < 0 || layer >= MaxLayers {
		return false
	}
	return m&(1<<uint(layer)) != 0
}

func (m LayerMask) Without(layer int) LayerMask {
	if layer < 0 || layer >= MaxLayers {
		return m
	}
	return m &^ (1 << uint(layer))
}

// SensorMask builds the ground sensor mask for a body on layer: every layer
// the body can collide with, minus IgnoreRaycastLayer.
func SensorMask(layer int, matrix LayerMatrix) LayerMask {
	mask := AllLayers
	if matrix != nil {
		for i := 0; i < MaxLayers; i++ {
			if matrix.IgnoresLayerCollision(layer, i) {
				mask = mask.Without(i)
			}
		}
	}
	return mask.Without(IgnoreRaycastLayer)
}
