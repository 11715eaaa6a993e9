package state

import "sync"

// WeatherFrames are the last rendered weather frames shared by every panel.
type WeatherFrames struct {
	Update string
	Color  string
}

type WeatherCache struct {
	mu     sync.RWMutex
	frames WeatherFrames
}

func NewWeatherCache() *WeatherCache {
	return &WeatherCache{}
}

func (c *WeatherCache) Get() WeatherFrames {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frames
}

// Set replaces both frames together.
func (c *WeatherCache) Set(frames WeatherFrames) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
}
