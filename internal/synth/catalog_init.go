// catalog_init.go - registers every catalog entry, in a fixed, stable order

package synth

func init() {
	registerCatalog(oscillatorCatalogName, newOscillatorModule)
	registerCatalog(gridSequencerCatalogName, newGridSequencerModule)
	registerCatalog(patternSequencerCatalogName, newPatternSequencerModule)
	registerCatalog(adsrCatalogName, newADSRModule)
	registerCatalog(vcaCatalogName, newVCAModule)
	registerCatalog(filterCatalogName, newFilterModule)
	registerCatalog(mixerCatalogName, newMixerModule)
	registerCatalog(samplePlayerCatalogName, newSamplePlayerModule)
	registerCatalog(mathCatalogName, newMathModule)
	registerCatalog(noiseCatalogName, newNoiseModule)
	registerCatalog(freeverbCatalogName, newFreeverbModule)
	registerCatalog(outputCatalogName, newOutputModule)
	registerCatalog(scriptCatalogName, newScriptModule)
}

// decoderByTag dispatches a patch-codec ModuleRecord to the catalog
// entry's decode function. Kept separate from registerCatalog because
// decode needs the record, not just the audio config.
var decoderByTag = map[string]func(ModuleRecord, AudioConfig) Module{
	oscillatorCatalogName:       decodeOscillator,
	gridSequencerCatalogName:    decodeGridSequencer,
	patternSequencerCatalogName: decodePatternSequencer,
	adsrCatalogName:             decodeADSR,
	vcaCatalogName:              decodeVCA,
	filterCatalogName:           decodeFilter,
	mixerCatalogName:            decodeMixer,
	samplePlayerCatalogName:     decodeSamplePlayer,
	mathCatalogName:             decodeMath,
	noiseCatalogName:            decodeNoise,
	freeverbCatalogName:         decodeFreeverb,
	outputCatalogName:           decodeOutput,
	scriptCatalogName:           decodeScript,
}
